package archivum

// TableView is handed to a ForEach callback: a read/write window onto one
// matched archetype's columns, valid only for the duration of the
// callback. The engine owns the backing arrays; a growth triggered by a
// structural change invalidates any slice obtained from a TableView for
// that archetype/field, so callers must not retain them past the call.
type TableView struct {
	arch *archetypeTable
}

// EntityIDs returns the live row-index -> entity-id prefix, length Len().
func (v *TableView) EntityIDs() []EntityID {
	return v.arch.EntityIDs()
}

// Len returns the archetype's current row count.
func (v *TableView) Len() int {
	return v.arch.Len()
}

// Field returns the whole backing storage for ref's field (length
// capacity*stride); only the first Len()*FieldStride(ref) elements are
// live. Reports false if the archetype has no such field.
func (v *TableView) Field(ref FieldRef) (any, bool) {
	store, ok := v.arch.store(ref.Component)
	if !ok {
		return nil, false
	}
	col, ok := store.Field(ref.Field)
	if !ok {
		return nil, false
	}
	return col.Raw(), true
}

// FieldStride returns ref's field stride (1 for a scalar field).
func (v *TableView) FieldStride(ref FieldRef) int {
	store, ok := v.arch.store(ref.Component)
	if !ok {
		return 0
	}
	col, ok := store.Field(ref.Field)
	if !ok {
		return 0
	}
	return col.Schema().Stride
}

// Snapshot returns the change-tracking mirror's backing storage for ref's
// field, or false if this archetype is untracked or has no such field.
func (v *TableView) Snapshot(ref FieldRef) (any, bool) {
	store, ok := v.arch.snapshotStore(ref.Component)
	if !ok {
		return nil, false
	}
	col, ok := store.Field(ref.Field)
	if !ok {
		return nil, false
	}
	return col.Raw(), true
}
