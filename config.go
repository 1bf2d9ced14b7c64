package archivum

import "github.com/sirupsen/logrus"

// DefaultCapacity is the initial row capacity of a freshly created
// archetype table (spec.md §4.4: "initial c = 64, doubles on growth").
const DefaultCapacity = 64

// ArchetypeEvents lets a host application observe structural milestones
// without going through the HookBus (which fires per-entity, per-component
// add/remove events). OnArchetypeCreated fires once per archetype, when it
// is created; there is no per-migration event. Mirrors the teacher's
// table.TableEvents hook point.
type ArchetypeEvents struct {
	OnArchetypeCreated func(id uint32, mask string)
}

// Config holds process-wide, swappable knobs for the engine. Like the
// teacher's own config.go, this is a plain struct behind a package-level
// variable rather than a configuration framework: the engine is an
// embeddable library, not an application, and every corpus repo that
// reaches for a config framework (spf13/viper in opd-ai-violence) is an
// application wiring its own settings file, not a library like this one.
var Config = config{
	Logger:          logrus.StandardLogger(),
	DefaultCapacity: DefaultCapacity,
	EnableSIMD:      true,
}

type config struct {
	// Logger receives a Debug-level diagnostic for each archetype creation;
	// nothing else is logged. Swap it for a scoped logger in a host
	// application; nil disables logging entirely.
	Logger *logrus.Logger

	// DefaultCapacity seeds every newly created archetype table.
	DefaultCapacity int

	// EnableSIMD gates the lane-of-4 unrolled apply path (§4.10). When
	// false, apply always uses the scalar loop, which is useful for
	// reproducing bit-identical results across platforms during tests.
	EnableSIMD bool

	// Events are the archetype-lifecycle hooks, analogous to the teacher's
	// table.TableEvents.
	Events ArchetypeEvents
}

// SetEvents installs the archetype-lifecycle event callbacks.
func (c *config) SetEvents(e ArchetypeEvents) {
	c.Events = e
}

func (c *config) logf(level logrus.Level, format string, args ...any) {
	if c.Logger == nil {
		return
	}
	c.Logger.Logf(level, format, args...)
}
