package archivum

import "testing"

// Exercises the composable QueryNode surface (With/And/Or/Not) end to end
// through World.MatchQuery, alongside the flat include/exclude form, since
// an OR-shaped predicate ("either Enemy or Ally") can't be expressed as a
// single include/exclude pair.
func TestMatchQueryOrNotCombinators(t *testing.T) {
	tc := newTestWorld(t)
	w := tc.world

	enemy := w.CreateEntityWith(
		ComponentValue{Def: tc.position, Data: map[string]any{"x": 1, "y": 1}},
		ComponentValue{Def: tc.enemy, Data: nil},
	)
	ally := w.CreateEntityWith(
		ComponentValue{Def: tc.position, Data: map[string]any{"x": 2, "y": 2}},
		ComponentValue{Def: tc.ally, Data: nil},
	)
	deadEnemy := w.CreateEntityWith(
		ComponentValue{Def: tc.position, Data: map[string]any{"x": 3, "y": 3}},
		ComponentValue{Def: tc.enemy, Data: nil},
		ComponentValue{Def: tc.dead, Data: nil},
	)
	bystander := w.CreateEntityWith(ComponentValue{Def: tc.position, Data: map[string]any{"x": 4, "y": 4}})

	q := Factory.NewQuery(And(
		Or(With(tc.enemy), With(tc.ally)),
		Not(With(tc.dead)),
	))

	got := map[EntityID]bool{}
	for _, id := range w.MatchQuery(q) {
		got[id] = true
	}

	if !got[enemy] || !got[ally] {
		t.Errorf("MatchQuery missed a living enemy or ally: got %v", got)
	}
	if got[deadEnemy] {
		t.Errorf("MatchQuery included a dead enemy, want excluded by Not(With(Dead))")
	}
	if got[bystander] {
		t.Errorf("MatchQuery included a bystander with neither Enemy nor Ally")
	}
}
