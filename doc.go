/*
Package archivum provides an archetype-based Entity-Component-System (ECS)
storage and iteration engine for interactive simulations.

Archivum groups entities by their exact component set ("archetype") and
stores each archetype's component data column-by-column (struct-of-arrays)
for cache-friendly iteration at large entity counts. It is single-threaded
and cooperative: exactly one goroutine should own a World at a time.

Core Concepts:

  - Entity: an opaque, monotonically issued id.
  - ComponentDef: a named, process-unique component identity, optionally
    carrying a field schema; a schema-less def is a tag.
  - Archetype: the set of entities sharing exactly the same components.
  - Query / ForEach: find and iterate entities matching a component set.
  - Apply: a bulk, archetype-wide arithmetic update over f32 columns.

Basic Usage:

	world := archivum.NewWorld(64)

	position, _ := world.Registry.DefineUniform("Position", archivum.KindF32, 1, "x", "y")
	velocity, _ := world.Registry.DefineUniform("Velocity", archivum.KindF32, 1, "vx", "vy")

	id := world.CreateEntityWith(
		archivum.ComponentValue{Def: position, Data: map[string]any{"x": 0, "y": 0}},
		archivum.ComponentValue{Def: velocity, Data: map[string]any{"vx": 1, "vy": 0}},
	)

	posX, _ := position.Field("x")
	velX, _ := velocity.Field("vx")

	world.ForEach([]*archivum.ComponentDef{position, velocity}, nil, func(v *archivum.TableView) {
		xs, _ := v.Field(posX)
		dxs, _ := v.Field(velX)
		_ = xs
		_ = dxs
	})

	_ = id
*/
package archivum
