package archivum

import "fmt"

// UnknownTypeError is returned when a component's field-kind token does not
// parse — e.g. a typo in a schema spec passed to DefineSchema.
type UnknownTypeError struct {
	Token string
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("archivum: unknown field type %q", e.Token)
}

// InvalidOperandError is returned when an apply expression references a tag
// component, or a field that does not exist on the component it names.
type InvalidOperandError struct {
	Component string
	Field     string
}

func (e InvalidOperandError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("archivum: component %q has no schema and cannot be used as an apply operand", e.Component)
	}
	return fmt.Sprintf("archivum: component %q has no field %q", e.Component, e.Field)
}

// MissingRowError indicates the EntityDirectory's placement disagreed with
// the archetype's own row map. This is an internal invariant violation:
// callers should not attempt to recover from it, only report it upstream.
type MissingRowError struct {
	Entity EntityID
}

func (e MissingRowError) Error() string {
	return fmt.Sprintf("archivum: entity %d has a directory placement but no matching row", e.Entity)
}

// ComponentAlreadyDefinedError is returned when DefineSchema/DefineUniform/
// DefineTag is called with a name already registered under a conflicting
// field schema.
type ComponentAlreadyDefinedError struct {
	Name string
}

func (e ComponentAlreadyDefinedError) Error() string {
	return fmt.Sprintf("archivum: component %q already defined with a different schema", e.Name)
}

// CacheFullError is returned when a Registry has reached its configured
// maximum component capacity.
type CacheFullError struct {
	Capacity int
}

func (e CacheFullError) Error() string {
	return fmt.Sprintf("archivum: component registry at capacity (%d)", e.Capacity)
}
