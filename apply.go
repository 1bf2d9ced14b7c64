package archivum

import "github.com/duskforge/archivum/internal/bitset"

// ApplyFilter narrows which archetypes an Apply call considers, beyond
// the components the expression itself reads.
type ApplyFilter struct {
	With    []*ComponentDef
	Without []*ComponentDef
}

// rngKey identifies the persisted LCG state for one (archetype, target
// field) pair, so successive Apply calls on the same table/field don't
// repeat their random stream.
type rngKey struct {
	arch      archetypeID
	component ComponentID
	field     string
}

// lcgState is four independent lane states of the fixed-parameter linear
// congruential generator specified for Random: multiplier 1664525,
// increment 1013904223. The SIMD path advances all four lanes in
// lockstep; the scalar path (and the scalar remainder of a SIMD run)
// advances lane 0 only.
type lcgState struct {
	s [4]uint32
}

func newLCGState() *lcgState {
	// Seed lanes distinctly so a 4-wide SIMD run doesn't produce identical
	// streams across lanes; the exact seed isn't spec-mandated, only that
	// the stream is deterministic and reproducible across runs.
	return &lcgState{s: [4]uint32{0x2545F491, 0x6C178A2D, 0x1B873593, 0x85EBCA6B}}
}

func (l *lcgState) next(lane int) uint32 {
	l.s[lane] = l.s[lane]*1664525 + 1013904223
	return l.s[lane]
}

func lcgUnit(raw uint32) float32 {
	return float32(raw>>8) * float32(0x1p-24)
}

func randomValue(l *lcgState, lane int, min, max float32) float32 {
	return min + lcgUnit(l.next(lane))*(max-min)
}

func (w *World) rngFor(arch *archetypeTable, target FieldRef) *lcgState {
	key := rngKey{arch: arch.id, component: target.Component, field: target.Field}
	st, ok := w.rng[key]
	if !ok {
		st = newLCGState()
		w.rng[key] = st
	}
	return st
}

// validateExpr enforces the InvalidOperand rule: every FieldExpr leaf
// (including the Apply target, checked by the caller the same way) must
// name a schema'd component and an existing field on it.
func (w *World) validateExpr(e Expr) error {
	switch n := e.(type) {
	case FieldExpr:
		def := w.Registry.ByID(n.Ref.Component)
		if def == nil || def.IsTag() {
			name := ""
			if def != nil {
				name = def.Name()
			}
			return InvalidOperandError{Component: name}
		}
		if _, ok := def.Field(n.Ref.Field); !ok {
			return InvalidOperandError{Component: def.Name(), Field: n.Ref.Field}
		}
	case RandomExpr:
	case AddExpr:
		if err := w.validateExpr(n.A); err != nil {
			return err
		}
		return w.validateExpr(n.B)
	case SubExpr:
		if err := w.validateExpr(n.A); err != nil {
			return err
		}
		return w.validateExpr(n.B)
	case MulExpr:
		if err := w.validateExpr(n.A); err != nil {
			return err
		}
		return w.validateExpr(n.B)
	case ScaleExpr:
		return w.validateExpr(n.A)
	}
	return nil
}

// Apply evaluates expr across exactly n rows of target's column for every
// matched archetype, writing the result back in place. It never changes
// component membership and never fires hooks (I9). It does allocate: every
// call builds the required-component set and the include/exclude masks, a
// table's LCG state is created on its first Apply, and the scalar path
// boxes each row's value.
//
// The match set is (components referenced by target and expr) ∪
// filter.With, minus filter.Without. A table lacking target's column is
// skipped silently, matching the "silent no-op on missing target" policy
// (this also covers an empty match set, B3).
func (w *World) Apply(target FieldRef, expr Expr, filter *ApplyFilter) error {
	if err := w.validateExpr(FieldExpr{Ref: target}); err != nil {
		return err
	}
	if err := w.validateExpr(expr); err != nil {
		return err
	}

	required := map[ComponentID]struct{}{target.Component: {}}
	collectFieldComponents(expr, required)

	include := bitset.New()
	for c := range required {
		include.Mark(uint32(c))
	}
	exclude := bitset.New()
	if filter != nil {
		for _, d := range filter.With {
			include.Mark(uint32(d.ID()))
		}
		for _, d := range filter.Without {
			exclude.Mark(uint32(d.ID()))
		}
	}

	simdEligible := Config.EnableSIMD && allFieldsF32(w.Registry, FieldExpr{Ref: target}) && allFieldsF32(w.Registry, expr)

	for _, t := range w.index.query(include, exclude) {
		n := t.Len()
		if n == 0 {
			continue
		}
		store, ok := t.store(target.Component)
		if !ok {
			continue
		}
		col, ok := store.Field(target.Field)
		if !ok {
			continue
		}

		rng := w.rngFor(t, target)

		if simdEligible {
			applySIMD(t, col.F32Slice(), expr, n, rng)
			continue
		}
		applyScalar(t, target, expr, n, rng)
	}
	return nil
}

// applySIMD computes in lanes of 4, scalar remainder for n % 4.
func applySIMD(t *archetypeTable, dst []float32, expr Expr, n int, rng *lcgState) {
	i := 0
	for ; i+4 <= n; i += 4 {
		for lane := 0; lane < 4; lane++ {
			dst[i+lane] = evalF32(t, expr, i+lane, rng, lane)
		}
	}
	for ; i < n; i++ {
		dst[i] = evalF32(t, expr, i, rng, 0)
	}
}

func evalF32(t *archetypeTable, e Expr, row int, rng *lcgState, lane int) float32 {
	switch n := e.(type) {
	case FieldExpr:
		store, _ := t.store(n.Ref.Component)
		col, _ := store.Field(n.Ref.Field)
		return col.F32Slice()[row]
	case RandomExpr:
		return randomValue(rng, lane, n.Min, n.Max)
	case AddExpr:
		return evalF32(t, n.A, row, rng, lane) + evalF32(t, n.B, row, rng, lane)
	case SubExpr:
		return evalF32(t, n.A, row, rng, lane) - evalF32(t, n.B, row, rng, lane)
	case MulExpr:
		return evalF32(t, n.A, row, rng, lane) * evalF32(t, n.B, row, rng, lane)
	case ScaleExpr:
		return evalF32(t, n.A, row, rng, lane) * n.Scale
	}
	return 0
}

// applyScalar is the fully general fallback: it reads operands through
// the column's any-typed accessor so it works for any numeric target
// kind, not only f32, at the cost of per-row boxing.
func applyScalar(t *archetypeTable, target FieldRef, expr Expr, n int, rng *lcgState) {
	store, _ := t.store(target.Component)
	col, _ := store.Field(target.Field)
	for row := 0; row < n; row++ {
		v := evalScalar(t, expr, row, rng)
		col.SetArray(row, []any{v})
	}
}

func evalScalar(t *archetypeTable, e Expr, row int, rng *lcgState) float64 {
	switch n := e.(type) {
	case FieldExpr:
		store, _ := t.store(n.Ref.Component)
		col, _ := store.Field(n.Ref.Field)
		vals := col.GetArray(row)
		return toFloat64(vals[0])
	case RandomExpr:
		return float64(randomValue(rng, 0, n.Min, n.Max))
	case AddExpr:
		return evalScalar(t, n.A, row, rng) + evalScalar(t, n.B, row, rng)
	case SubExpr:
		return evalScalar(t, n.A, row, rng) - evalScalar(t, n.B, row, rng)
	case MulExpr:
		return evalScalar(t, n.A, row, rng) * evalScalar(t, n.B, row, rng)
	case ScaleExpr:
		return evalScalar(t, n.A, row, rng) * float64(n.Scale)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	}
	return 0
}
