package archivum

// factory implements the factory pattern for top-level archivum
// constructors, mirroring the teacher's own package-level Factory
// singleton.
type factory struct{}

// Factory is the global factory instance for creating archivum objects.
var Factory factory

// NewWorld creates a new World whose ComponentRegistry can hold up to
// maxComponents distinct components.
func (f factory) NewWorld(maxComponents int) *World {
	return NewWorld(maxComponents)
}

// NewQuery wraps root for repeated evaluation against a World.
func (f factory) NewQuery(root QueryNode) *Query {
	return NewQuery(root)
}
