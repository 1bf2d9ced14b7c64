package archivum

// Expr is a node in an apply expression tree (§4.10): Field, Random, Add,
// Sub, Mul, or Scale. The tree is interpreted column-wise by Apply, never
// evaluated node-by-node from outside the engine.
type Expr interface {
	isExpr()
}

// FieldExpr reads the current value of the field named by Ref for the row
// being processed.
type FieldExpr struct {
	Ref FieldRef
}

// RandomExpr fills with uniform values in [Min, Max).
type RandomExpr struct {
	Min, Max float32
}

// AddExpr is a + b.
type AddExpr struct{ A, B Expr }

// SubExpr is a - b.
type SubExpr struct{ A, B Expr }

// MulExpr is a * b.
type MulExpr struct{ A, B Expr }

// ScaleExpr is a * s for a compile-time-known scalar s.
type ScaleExpr struct {
	A     Expr
	Scale float32
}

func (FieldExpr) isExpr()  {}
func (RandomExpr) isExpr() {}
func (AddExpr) isExpr()    {}
func (SubExpr) isExpr()    {}
func (MulExpr) isExpr()    {}
func (ScaleExpr) isExpr()  {}

// collectFieldComponents walks expr, adding every FieldExpr's component to
// out. Random leaves contribute nothing — they generate values, they
// don't read a column.
func collectFieldComponents(e Expr, out map[ComponentID]struct{}) {
	switch n := e.(type) {
	case FieldExpr:
		out[n.Ref.Component] = struct{}{}
	case AddExpr:
		collectFieldComponents(n.A, out)
		collectFieldComponents(n.B, out)
	case SubExpr:
		collectFieldComponents(n.A, out)
		collectFieldComponents(n.B, out)
	case MulExpr:
		collectFieldComponents(n.A, out)
		collectFieldComponents(n.B, out)
	case ScaleExpr:
		collectFieldComponents(n.A, out)
	}
}

// allFieldsF32 reports whether every FieldExpr leaf in e (and target)
// names an f32 field, the precondition for the SIMD fast path.
func allFieldsF32(reg *Registry, e Expr) bool {
	switch n := e.(type) {
	case FieldExpr:
		def := reg.ByID(n.Ref.Component)
		if def == nil {
			return false
		}
		kind, ok := def.FieldKind(n.Ref.Field)
		return ok && kind == KindF32
	case RandomExpr:
		return true
	case AddExpr:
		return allFieldsF32(reg, n.A) && allFieldsF32(reg, n.B)
	case SubExpr:
		return allFieldsF32(reg, n.A) && allFieldsF32(reg, n.B)
	case MulExpr:
		return allFieldsF32(reg, n.A) && allFieldsF32(reg, n.B)
	case ScaleExpr:
		return allFieldsF32(reg, n.A)
	}
	return false
}
