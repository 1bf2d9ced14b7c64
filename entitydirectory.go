package archivum

import "github.com/TheBitDrifter/bark"

// EntityID is an opaque, monotonically issued identifier. IDs are never
// reused within a World's lifetime; the zero value is never valid.
type EntityID uint64

// entityDirectory is the spec's EntityDirectory: an id allocator plus an
// id -> (archetype, row) placement map. It tracks "known" ids (including
// zero-component entities, which still must be enumerable) separately
// from placement, per spec.md §3's EntityDirectory invariant.
//
// Both are kept as dense, id-minus-one-indexed slices rather than maps,
// growing by doubling exactly like the teacher's own globalEntities slice
// in factory.go/storage.go — entity ids are allocated sequentially, so a
// slice is the natural dense structure and avoids a hash lookup on every
// access at the target population size (10^6 entities).
type entityDirectory struct {
	nextID    EntityID
	alive     []bool
	placement []*archetypeTable
	rowOf     []int
}

func newEntityDirectory() *entityDirectory {
	return &entityDirectory{nextID: 1}
}

func (d *entityDirectory) grow(toLen int) {
	if toLen <= len(d.alive) {
		return
	}
	if toLen <= cap(d.alive) {
		d.alive = d.alive[:toLen]
		d.placement = d.placement[:toLen]
		d.rowOf = d.rowOf[:toLen]
		return
	}
	newCap := toLen
	if have := cap(d.alive); 2*have > newCap {
		newCap = 2 * have
	}
	alive := make([]bool, toLen, newCap)
	copy(alive, d.alive)
	d.alive = alive

	placement := make([]*archetypeTable, toLen, newCap)
	copy(placement, d.placement)
	d.placement = placement

	rowOf := make([]int, toLen, newCap)
	copy(rowOf, d.rowOf)
	d.rowOf = rowOf
}

// allocate issues the next entity id, marking it known with no placement.
func (d *entityDirectory) allocate() EntityID {
	id := d.nextID
	d.nextID++
	idx := int(id - 1)
	d.grow(idx + 1)
	d.alive[idx] = true
	d.placement[idx] = nil
	return id
}

// restore marks id known with no placement, growing the directory to
// cover it, without consuming nextID. Used by Deserialize to reinstate
// entity ids exactly as recorded rather than reallocating them.
func (d *entityDirectory) restore(id EntityID) {
	idx := int(id - 1)
	d.grow(idx + 1)
	d.alive[idx] = true
	d.placement[idx] = nil
}

func (d *entityDirectory) isKnown(id EntityID) bool {
	idx := int(id - 1)
	if idx < 0 || idx >= len(d.alive) {
		return false
	}
	return d.alive[idx]
}

func (d *entityDirectory) place(id EntityID, arch *archetypeTable, row int) {
	idx := int(id - 1)
	d.placement[idx] = arch
	d.rowOf[idx] = row
}

func (d *entityDirectory) unplace(id EntityID) {
	idx := int(id - 1)
	d.placement[idx] = nil
}

func (d *entityDirectory) placementOf(id EntityID) (*archetypeTable, int, bool) {
	idx := int(id - 1)
	if idx < 0 || idx >= len(d.placement) {
		return nil, 0, false
	}
	arch := d.placement[idx]
	if arch == nil {
		return nil, 0, false
	}
	row := d.rowOf[idx]
	if got, ok := arch.rowOf[id]; !ok || got != row {
		panic(bark.AddTrace(MissingRowError{Entity: id}))
	}
	return arch, row, true
}

// forget removes id from the known set entirely (destroyEntity).
func (d *entityDirectory) forget(id EntityID) {
	idx := int(id - 1)
	if idx < 0 || idx >= len(d.alive) {
		return
	}
	d.alive[idx] = false
	d.placement[idx] = nil
}

// knownIDs enumerates every currently-known id, including zero-component
// ones, in ascending allocation order.
func (d *entityDirectory) knownIDs() []EntityID {
	out := make([]EntityID, 0, len(d.alive))
	for i, alive := range d.alive {
		if alive {
			out = append(out, EntityID(i+1))
		}
	}
	return out
}
