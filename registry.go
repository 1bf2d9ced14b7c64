package archivum

import (
	"strconv"
	"strings"

	"github.com/duskforge/archivum/internal/column"
)

// ComponentID is the process-unique dense bit index assigned to a
// ComponentDef the first time it is interned. It doubles as the
// component's position in BitMaskSet.
type ComponentID uint32

// FieldKind names a field's element type. Re-exported from the column
// package so callers never need to import internal/column directly.
type FieldKind = column.Kind

const (
	KindI8     = column.KindI8
	KindI16    = column.KindI16
	KindI32    = column.KindI32
	KindU8     = column.KindU8
	KindU16    = column.KindU16
	KindU32    = column.KindU32
	KindF32    = column.KindF32
	KindF64    = column.KindF64
	KindString = column.KindString
)

// FieldSpec describes one schema field: a field name paired with its kind
// and, for fixed-length array fields, its stride. DefineSchema does not
// take FieldSpecs; it takes type-spec tokens.
type FieldSpec struct {
	Name   string
	Kind   FieldKind
	Stride int // 0 or 1 for a scalar; N>=1 for a fixed-stride array
}

// ComponentDef is a process-unique component identity plus its optional
// schema. A ComponentDef with no fields is a tag: it conveys archetype
// membership only, no per-row data.
type ComponentDef struct {
	id         ComponentID
	name       string
	fields     []column.Schema
	fieldIndex map[string]int
}

// ID returns the component's dense bit index.
func (d *ComponentDef) ID() ComponentID { return d.id }

// Name returns the user-facing component name.
func (d *ComponentDef) Name() string { return d.name }

// IsTag reports whether the component carries no schema.
func (d *ComponentDef) IsTag() bool { return len(d.fields) == 0 }

// Fields returns the ordered field schemas (nil for a tag).
func (d *ComponentDef) Fields() []column.Schema { return d.fields }

// FieldRef is a pair (ComponentDef identity, field name). It also records
// the field's schema index, resolved when the FieldRef is built; Get, Set,
// TableView and Apply do not use that index and look the field's column
// up by name on every access.
type FieldRef struct {
	Component ComponentID
	Field     string
	index     int
}

// Field builds a FieldRef for name on d, or reports false if d has no such
// field, so an unknown field name is reported here rather than surfacing
// as a silent miss in Get/Set.
func (d *ComponentDef) Field(name string) (FieldRef, bool) {
	idx, ok := d.fieldIndex[name]
	if !ok {
		return FieldRef{}, false
	}
	return FieldRef{Component: d.id, Field: name, index: idx}, true
}

// FieldKind reports name's element kind, or false if d has no such field.
func (d *ComponentDef) FieldKind(name string) (FieldKind, bool) {
	idx, ok := d.fieldIndex[name]
	if !ok {
		return 0, false
	}
	return d.fields[idx].Kind, true
}

// Registry interns ComponentDefs, assigning each a dense bit index on
// first observation, and holds their schemas. It is the spec's
// ComponentRegistry (§4.1). The interning table is adapted from the
// teacher's SimpleCache[T] (cache.go): a name-indexed slice with a
// capacity ceiling, specialized here to *ComponentDef since the registry
// is its only consumer in this engine.
type Registry struct {
	defs        []*ComponentDef
	indexByName map[string]int
	maxCapacity int
}

// NewRegistry creates a Registry able to hold up to maxComponents distinct
// components. A host simulation typically defines its whole component set
// once at startup, so this ceiling exists to catch runaway dynamic
// definition, not to bound a hot path.
func NewRegistry(maxComponents int) *Registry {
	return &Registry{
		indexByName: make(map[string]int, maxComponents),
		maxCapacity: maxComponents,
	}
}

func (r *Registry) intern(name string, fields []column.Schema) (*ComponentDef, error) {
	if idx, ok := r.indexByName[name]; ok {
		existing := r.defs[idx]
		if !schemasEqual(existing.fields, fields) {
			return nil, ComponentAlreadyDefinedError{Name: name}
		}
		return existing, nil
	}
	if len(r.defs) >= r.maxCapacity {
		return nil, CacheFullError{Capacity: r.maxCapacity}
	}
	def := &ComponentDef{
		id:     ComponentID(len(r.defs)),
		name:   name,
		fields: fields,
	}
	if len(fields) > 0 {
		def.fieldIndex = make(map[string]int, len(fields))
		for i, f := range fields {
			def.fieldIndex[f.Name] = i
		}
	}
	r.indexByName[name] = len(r.defs)
	r.defs = append(r.defs, def)
	return def, nil
}

// DefineTag interns a schema-less component: membership only, no data.
func (r *Registry) DefineTag(name string) (*ComponentDef, error) {
	return r.intern(name, nil)
}

// DefineUniform interns a component where every named field shares kind
// (and, for array fields, stride).
func (r *Registry) DefineUniform(name string, kind FieldKind, stride int, fieldNames ...string) (*ComponentDef, error) {
	if stride < 1 {
		stride = 1
	}
	fields := make([]column.Schema, len(fieldNames))
	for i, n := range fieldNames {
		fields[i] = column.Schema{Name: n, Kind: kind, Stride: stride}
	}
	return r.intern(name, fields)
}

// DefineSchema interns a component with mixed field kinds, each given as a
// type-spec token (see ParseFieldKind) rather than a pre-parsed Kind.
func (r *Registry) DefineSchema(name string, fields map[string]string) (*ComponentDef, error) {
	schema := make([]column.Schema, 0, len(fields))
	// Deterministic order regardless of map iteration so that equal schema
	// inputs always produce equal field-index assignments.
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sortStrings(names)
	for _, n := range names {
		kind, stride, err := ParseFieldKind(fields[n])
		if err != nil {
			return nil, err
		}
		schema = append(schema, column.Schema{Name: n, Kind: kind, Stride: stride})
	}
	return r.intern(name, schema)
}

// ByName returns the ComponentDef registered under name, or nil.
func (r *Registry) ByName(name string) *ComponentDef {
	idx, ok := r.indexByName[name]
	if !ok {
		return nil
	}
	return r.defs[idx]
}

// Defs returns every interned ComponentDef, in definition order.
func (r *Registry) Defs() []*ComponentDef {
	return r.defs
}

// ByID returns the ComponentDef assigned id, or nil if id was never
// interned by this registry.
func (r *Registry) ByID(id ComponentID) *ComponentDef {
	if int(id) < 0 || int(id) >= len(r.defs) {
		return nil
	}
	return r.defs[id]
}

// BitIndexOf returns def's dense bit index. Idempotent: def was already
// assigned its index at definition time, so this is just an accessor,
// named to match spec.md's operation table.
func (r *Registry) BitIndexOf(def *ComponentDef) uint32 {
	return uint32(def.id)
}

// schemasEqual reports whether two field schemas name the same fields, in
// the same order, with the same kind and stride — the shape check guarding
// re-definition of a component name under a conflicting schema.
func schemasEqual(a, b []column.Schema) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortStrings is a tiny insertion sort to avoid pulling in "sort" for a
// handful of field names at definition time (definition is cold, but
// there is no reason to reach for a whole-package import here).
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// ParseFieldKind parses a type-spec token such as "f32", "i16[3]", or
// "string" into a Kind and stride. Recognized tokens: i8, i16, i32, u8,
// u16, u32, f32, f64, string, each optionally followed by "[N]", N >= 1,
// denoting a fixed-stride array.
func ParseFieldKind(token string) (FieldKind, int, error) {
	base := token
	stride := 1
	if open := strings.IndexByte(token, '['); open >= 0 {
		if !strings.HasSuffix(token, "]") {
			return 0, 0, UnknownTypeError{Token: token}
		}
		base = token[:open]
		n, err := strconv.Atoi(token[open+1 : len(token)-1])
		if err != nil || n < 1 {
			return 0, 0, UnknownTypeError{Token: token}
		}
		stride = n
	}
	switch base {
	case "i8":
		return column.KindI8, stride, nil
	case "i16":
		return column.KindI16, stride, nil
	case "i32":
		return column.KindI32, stride, nil
	case "u8":
		return column.KindU8, stride, nil
	case "u16":
		return column.KindU16, stride, nil
	case "u32":
		return column.KindU32, stride, nil
	case "f32":
		return column.KindF32, stride, nil
	case "f64":
		return column.KindF64, stride, nil
	case "string":
		return column.KindString, stride, nil
	default:
		return 0, 0, UnknownTypeError{Token: token}
	}
}
