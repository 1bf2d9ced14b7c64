package archivum

import (
	"github.com/duskforge/archivum/internal/bitset"
	"github.com/duskforge/archivum/internal/column"
)

// ComponentValue pairs a ComponentDef with the field data for one entity's
// row in that component, used by CreateEntityWith and AddComponent.
type ComponentValue struct {
	Def  *ComponentDef
	Data map[string]any
}

// World is the public facade: it wires the ComponentRegistry, the
// ArchetypeIndex, the EntityDirectory, the HookBus, and the
// DeferralQueue together into the single-owner, single-threaded engine
// described by the concurrency model. There is no internal
// synchronization — exactly one goroutine may own a World.
type World struct {
	Registry *Registry

	index     *archetypeIndex
	directory *entityDirectory
	hooks     *hookBus
	deferral  *deferralQueue

	trackFilter bitset.Set
	tracking    bool
	created     map[EntityID]struct{}
	destroyed   map[EntityID]struct{}
	createdSeq  []EntityID
	destroySeq  []EntityID

	rng map[rngKey]*lcgState
}

// NewWorld creates an empty World whose registry can hold up to
// maxComponents distinct ComponentDefs.
func NewWorld(maxComponents int) *World {
	return &World{
		Registry:  NewRegistry(maxComponents),
		index:     newArchetypeIndex(),
		directory: newEntityDirectory(),
		hooks:     newHookBus(),
		deferral:  newDeferralQueue(),
		created:   make(map[EntityID]struct{}),
		destroyed: make(map[EntityID]struct{}),
		rng:       make(map[rngKey]*lcgState),
	}
}

func maskOf(defs []*ComponentDef) bitset.Set {
	m := bitset.New()
	for _, d := range defs {
		m.Mark(uint32(d.ID()))
	}
	return m
}

func combineDefs(base []*ComponentDef, add *ComponentDef) []*ComponentDef {
	out := make([]*ComponentDef, 0, len(base)+1)
	out = append(out, base...)
	out = append(out, add)
	return out
}

func withoutDef(base []*ComponentDef, remove *ComponentDef) []*ComponentDef {
	out := make([]*ComponentDef, 0, len(base))
	for _, d := range base {
		if d.ID() != remove.ID() {
			out = append(out, d)
		}
	}
	return out
}

// CreateEntity allocates a new id with no component membership. No hooks
// fire; the id is immediately a member of the "known ids" set and can
// receive components later.
func (w *World) CreateEntity() EntityID {
	return w.directory.allocate()
}

// CreateEntityWith allocates an id, writes every supplied component's row
// once in its target archetype (no migrations), and enqueues one
// add-pending hook entry per component.
func (w *World) CreateEntityWith(comps ...ComponentValue) EntityID {
	id := w.directory.allocate()
	if len(comps) == 0 {
		return id
	}
	defs := make([]*ComponentDef, len(comps))
	for i, cv := range comps {
		defs[i] = cv.Def
	}
	mask := maskOf(defs)
	target := w.index.getOrCreate(mask, defs)

	rowData := make(map[ComponentID]map[string]any, len(comps))
	for _, cv := range comps {
		rowData[cv.Def.ID()] = cv.Data
	}
	row := target.addRow(id, rowData)
	w.directory.place(id, target, row)

	for _, cv := range comps {
		w.hooks.enqueueAdd(cv.Def.ID(), id)
	}
	if w.tracking && mask.ContainsAny(w.trackFilter) {
		w.markCreated(id)
	}
	return id
}

// DestroyEntity removes id's row (if any) from its archetype and forgets
// the id entirely. Destroying an unknown id is a silent no-op. If called
// while any forEach is active, the destroy is deferred to its exit.
func (w *World) DestroyEntity(id EntityID) {
	if w.deferral.active() {
		w.deferral.deferDestroy(id)
		return
	}
	w.applyDestroy(id)
}

func (w *World) applyDestroy(id EntityID) {
	arch, row, hasPlacement := w.directory.placementOf(id)
	if hasPlacement {
		for _, def := range arch.defs {
			if w.hooks.hasRemoveObserver(def.ID()) {
				w.hooks.recordTombstone(id, def.ID(), arch.readRow(def.ID(), row))
			}
			w.hooks.enqueueRemove(def.ID(), id)
		}
		if w.tracking && arch.mask.ContainsAny(w.trackFilter) {
			w.markDestroyed(id)
		}
		if moved, didMove := arch.removeRow(row); didMove {
			w.directory.place(moved, arch, row)
		}
		w.directory.unplace(id)
	}
	w.directory.forget(id)
}

// AddComponent writes data into entity id's row for def, creating or
// migrating its archetype as needed. While a ForEach is active, an entity
// that already has def is overwritten in place at once and any other add
// is deferred until the outermost ForEach returns. Otherwise an entity
// with no components moves into the {def} archetype, an entity that
// already has def has its row overwritten (no add event), and any other
// entity migrates to the archetype with def added. Unknown ids are ignored.
func (w *World) AddComponent(id EntityID, def *ComponentDef, data map[string]any) {
	if w.deferral.active() {
		if arch, row, ok := w.directory.placementOf(id); ok && arch.HasComponent(def.ID()) {
			arch.writeRow(def.ID(), row, data)
			return
		}
		w.deferral.deferAdd(id, def.ID(), data)
		return
	}
	w.applyAddComponent(id, def, data)
}

func (w *World) applyAddComponent(id EntityID, def *ComponentDef, data map[string]any) {
	arch, row, hasPlacement := w.directory.placementOf(id)
	if !hasPlacement {
		if !w.directory.isKnown(id) {
			return
		}
		mask := bitset.New()
		mask.Mark(uint32(def.ID()))
		target := w.index.getOrCreate(mask, []*ComponentDef{def})
		newRow := target.addRow(id, map[ComponentID]map[string]any{def.ID(): data})
		w.directory.place(id, target, newRow)
		w.hooks.enqueueAdd(def.ID(), id)
		return
	}
	if arch.HasComponent(def.ID()) {
		arch.writeRow(def.ID(), row, data)
		return
	}

	targetDefs := combineDefs(arch.defs, def)
	targetMask := arch.mask.Clone()
	targetMask.Mark(uint32(def.ID()))
	target := w.index.getOrCreate(targetMask, targetDefs)

	staged := make(map[ComponentID]map[string]any, len(arch.defs)+1)
	for _, d := range arch.defs {
		if d.IsTag() {
			continue
		}
		staged[d.ID()] = arch.readRow(d.ID(), row)
	}
	staged[def.ID()] = data

	newRow := target.addRow(id, staged)
	if moved, didMove := arch.removeRow(row); didMove {
		w.directory.place(moved, arch, row)
	}
	w.directory.place(id, target, newRow)
	w.hooks.enqueueAdd(def.ID(), id)
}

// RemoveComponent drops def from entity id's component set, migrating its
// row to the reduced archetype (or removing the row entirely if def was
// its only component). A no-op if id lacks def.
func (w *World) RemoveComponent(id EntityID, def *ComponentDef) {
	if w.deferral.active() {
		w.deferral.deferRemove(id, def.ID())
		return
	}
	w.applyRemoveComponent(id, def)
}

func (w *World) applyRemoveComponent(id EntityID, def *ComponentDef) {
	arch, row, hasPlacement := w.directory.placementOf(id)
	if !hasPlacement || !arch.HasComponent(def.ID()) {
		return
	}

	if w.hooks.hasRemoveObserver(def.ID()) {
		w.hooks.recordTombstone(id, def.ID(), arch.readRow(def.ID(), row))
	}
	w.hooks.enqueueRemove(def.ID(), id)

	// Mirrors the source's conflation of "component removed" with "entity
	// destroyed" for tracking purposes — see SPEC_FULL.md's open-question
	// resolutions.
	if w.tracking && arch.mask.ContainsAny(w.trackFilter) {
		w.markDestroyed(id)
	}

	if len(arch.defs) == 1 {
		if moved, didMove := arch.removeRow(row); didMove {
			w.directory.place(moved, arch, row)
		}
		w.directory.unplace(id)
		return
	}

	targetDefs := withoutDef(arch.defs, def)
	targetMask := arch.mask.Clone()
	targetMask.Unmark(uint32(def.ID()))
	target := w.index.getOrCreate(targetMask, targetDefs)

	staged := make(map[ComponentID]map[string]any, len(targetDefs))
	for _, d := range targetDefs {
		if d.IsTag() {
			continue
		}
		staged[d.ID()] = arch.readRow(d.ID(), row)
	}

	newRow := target.addRow(id, staged)
	if moved, didMove := arch.removeRow(row); didMove {
		w.directory.place(moved, arch, row)
	}
	w.directory.place(id, target, newRow)
}

// HasComponent reports whether id's archetype includes def.
func (w *World) HasComponent(id EntityID, def *ComponentDef) bool {
	arch, _, ok := w.directory.placementOf(id)
	return ok && arch.HasComponent(def.ID())
}

// GetComponent returns id's live row for def, or its tombstoned row if def
// was recently removed and an observer is still within the commit window;
// absent otherwise.
func (w *World) GetComponent(id EntityID, def *ComponentDef) (map[string]any, bool) {
	if arch, row, ok := w.directory.placementOf(id); ok && arch.HasComponent(def.ID()) {
		return arch.readRow(def.ID(), row), true
	}
	return w.hooks.tombstone(id, def.ID())
}

// Get reads a single field without allocating the full component record:
// a scalar for stride-1 fields, a length-N slice for fixed-array fields.
func (w *World) Get(id EntityID, ref FieldRef) (any, bool) {
	if arch, row, ok := w.directory.placementOf(id); ok && arch.HasComponent(ref.Component) {
		if store, ok := arch.store(ref.Component); ok {
			if col, ok := store.Field(ref.Field); ok {
				vals := col.GetArray(row)
				if col.Schema().Stride <= 1 {
					return vals[0], true
				}
				return vals, true
			}
		}
	}
	if data, ok := w.hooks.tombstone(id, ref.Component); ok {
		if v, ok := data[ref.Field]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set writes a single field of a live row. Never writes a tombstone;
// silently no-ops if the entity or field is absent.
func (w *World) Set(id EntityID, ref FieldRef, value any) {
	arch, row, ok := w.directory.placementOf(id)
	if !ok || !arch.HasComponent(ref.Component) {
		return
	}
	store, ok := arch.store(ref.Component)
	if !ok {
		return
	}
	col, ok := store.Field(ref.Field)
	if !ok {
		return
	}
	if col.Schema().Stride <= 1 {
		col.SetArray(row, []any{value})
		return
	}
	col.SetArray(row, column.ToAnySlice(value))
}

func (w *World) markCreated(id EntityID) {
	if _, ok := w.created[id]; ok {
		return
	}
	w.created[id] = struct{}{}
	w.createdSeq = append(w.createdSeq, id)
}

func (w *World) markDestroyed(id EntityID) {
	if _, ok := w.destroyed[id]; ok {
		return
	}
	w.destroyed[id] = struct{}{}
	w.destroySeq = append(w.destroySeq, id)
}

// EnableTracking turns on change tracking for archetypes whose mask
// overlaps C, allocating snapshot mirrors for every existing and future
// matching archetype.
func (w *World) EnableTracking(defs ...*ComponentDef) {
	w.tracking = true
	filter := bitset.New()
	for _, d := range defs {
		filter.Mark(uint32(d.ID()))
	}
	w.trackFilter = filter
	w.index.setTrackingFilter(filter)
}

// FlushChanges returns and resets the created/destroyed id sets recorded
// since the last call.
func (w *World) FlushChanges() (created, destroyed []EntityID) {
	created = w.createdSeq
	destroyed = w.destroySeq
	w.createdSeq = nil
	w.destroySeq = nil
	w.created = make(map[EntityID]struct{})
	w.destroyed = make(map[EntityID]struct{})
	return created, destroyed
}

// FlushSnapshots copies every tracked archetype's committed column prefix
// into its parallel snapshot columns.
func (w *World) FlushSnapshots() {
	w.index.flushSnapshots()
}

// OnAdd registers cb to fire once per entity that newly gains def.
func (w *World) OnAdd(def *ComponentDef, cb AddObserver) Unsubscribe {
	return w.hooks.OnAdd(def.ID(), cb)
}

// OnRemove registers cb to fire once per entity that loses def.
func (w *World) OnRemove(def *ComponentDef, cb RemoveObserver) Unsubscribe {
	return w.hooks.OnRemove(def.ID(), cb)
}

// FlushHooks fires every pending add/remove event and clears the buffers.
func (w *World) FlushHooks() {
	w.hooks.Flush()
}

// CommitRemovals clears the remove-tombstone map.
func (w *World) CommitRemovals() {
	w.hooks.CommitRemovals()
}
