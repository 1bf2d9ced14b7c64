package archivum

import "testing"

func TestApplyAddWithoutFilterSkipsFrozen(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world
	frozen, err := w.Registry.DefineTag("Frozen")
	if err != nil {
		t.Fatalf("DefineTag Frozen: %v", err)
	}
	posX := mustField(t, tc.position, "x")
	velX := mustField(t, tc.velocity, "vx")

	const n = 20
	moving := make([]EntityID, n)
	frozenIDs := make([]EntityID, n)
	for i := 0; i < n; i++ {
		moving[i] = w.CreateEntityWith(
			ComponentValue{Def: tc.position, Data: map[string]any{"x": float32(i), "y": 0}},
			ComponentValue{Def: tc.velocity, Data: map[string]any{"vx": float32(1), "vy": 0}},
		)
		frozenIDs[i] = w.CreateEntityWith(
			ComponentValue{Def: tc.position, Data: map[string]any{"x": float32(i), "y": 0}},
			ComponentValue{Def: tc.velocity, Data: map[string]any{"vx": float32(1), "vy": 0}},
			ComponentValue{Def: frozen, Data: nil},
		)
	}

	err = w.Apply(posX, AddExpr{A: FieldExpr{Ref: posX}, B: FieldExpr{Ref: velX}}, &ApplyFilter{Without: []*ComponentDef{frozen}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i, id := range moving {
		v, _ := w.Get(id, posX)
		if v.(float32) != float32(i)+1 {
			t.Errorf("moving entity %d: x = %v, want %d", id, v, i+1)
		}
	}
	for i, id := range frozenIDs {
		v, _ := w.Get(id, posX)
		if v.(float32) != float32(i) {
			t.Errorf("frozen entity %d: x = %v, want unchanged %d", id, v, i)
		}
	}
}

// B3: apply on an empty match set is a silent no-op.
func TestApplyEmptyMatchSetNoError(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world
	posX := mustField(t, tc.position, "x")
	velX := mustField(t, tc.velocity, "vx")

	if err := w.Apply(posX, FieldExpr{Ref: velX}, nil); err != nil {
		t.Fatalf("Apply on empty world: %v", err)
	}
}

// I9: apply never changes archetype membership or row counts.
func TestApplyDoesNotChangeMembership(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world
	posX := mustField(t, tc.position, "x")

	w.CreateEntityWith(ComponentValue{Def: tc.position, Data: map[string]any{"x": 1, "y": 1}})
	w.CreateEntityWith(ComponentValue{Def: tc.position, Data: map[string]any{"x": 2, "y": 2}})

	before := w.Count([]*ComponentDef{tc.position}, nil)
	if err := w.Apply(posX, ScaleExpr{A: FieldExpr{Ref: posX}, Scale: 2}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	after := w.Count([]*ComponentDef{tc.position}, nil)
	if before != after {
		t.Fatalf("row count changed from %d to %d after apply", before, after)
	}
}

func TestApplyInvalidOperandOnTagComponent(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world
	posX := mustField(t, tc.position, "x")

	badRef := FieldRef{Component: tc.enemy.ID(), Field: "whatever"}
	err := w.Apply(posX, FieldExpr{Ref: badRef}, nil)
	if _, ok := err.(InvalidOperandError); !ok {
		t.Fatalf("Apply with tag-component operand err = %v (%T), want InvalidOperandError", err, err)
	}
}

func TestApplyRandomAdvancesAcrossCalls(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world
	posX := mustField(t, tc.position, "x")

	for i := 0; i < 8; i++ {
		w.CreateEntityWith(ComponentValue{Def: tc.position, Data: map[string]any{"x": 0, "y": 0}})
	}

	run := func(w *World) []float32 {
		if err := w.Apply(posX, RandomExpr{Min: 0, Max: 1}, nil); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		var out []float32
		w.ForEach([]*ComponentDef{tc.position}, nil, func(v *TableView) {
			xsAny, _ := v.Field(posX)
			xs := xsAny.([]float32)
			out = append(out, xs[:v.Len()]...)
		})
		return out
	}

	first := run(w)
	for _, v := range first {
		if v < 0 || v >= 1 {
			t.Fatalf("random value %v out of [0,1)", v)
		}
	}
	second := run(w)
	anyDiffer := false
	for i := range first {
		if first[i] != second[i] {
			anyDiffer = true
		}
	}
	if !anyDiffer {
		t.Fatalf("successive apply(Random) calls produced identical values; state is not advancing")
	}
}

func TestApplyScalarFallbackOnNonF32Target(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world
	hp := mustField(t, tc.health, "hp")

	id := w.CreateEntityWith(ComponentValue{Def: tc.health, Data: map[string]any{"hp": 10}})
	if err := w.Apply(hp, AddExpr{A: FieldExpr{Ref: hp}, B: FieldExpr{Ref: hp}}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v, _ := w.Get(id, hp)
	if v.(int32) != 20 {
		t.Fatalf("hp after apply doubling = %v, want 20", v)
	}
}
