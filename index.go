package archivum

import (
	"github.com/duskforge/archivum/internal/bitset"
	"github.com/sirupsen/logrus"
)

// ArchetypeIndex owns every archetypeTable keyed by its mask, plus the
// structural epoch counter and query-result cache described in spec.md
// §4.5. The epoch is bumped only when a brand new archetype is created —
// never by ordinary row mutation — so a cached query result stays valid
// across any amount of add/remove/destroy traffic that doesn't introduce
// a mask the index hasn't seen before.
type archetypeIndex struct {
	byKey   map[string]*archetypeTable
	order   []*archetypeTable
	nextID  archetypeID
	epoch   uint64
	cache   map[string]cachedQuery
	tracked bitset.Set
}

type cachedQuery struct {
	epoch   uint64
	results []*archetypeTable
}

func newArchetypeIndex() *archetypeIndex {
	return &archetypeIndex{
		byKey: make(map[string]*archetypeTable),
		cache: make(map[string]cachedQuery),
	}
}

// getOrCreate returns the archetype for mask, creating it (and bumping the
// structural epoch) if this exact mask has never been seen before.
func (idx *archetypeIndex) getOrCreate(mask bitset.Set, defs []*ComponentDef) *archetypeTable {
	key := mask.Key()
	if a, ok := idx.byKey[key]; ok {
		return a
	}
	a := newArchetypeTable(idx.nextID, defs, mask, key)
	idx.nextID++
	idx.byKey[key] = a
	idx.order = append(idx.order, a)
	idx.epoch++

	if !idx.tracked.IsEmpty() && mask.ContainsAny(idx.tracked) {
		a.ensureSnapshot()
	}

	if Config.Events.OnArchetypeCreated != nil {
		Config.Events.OnArchetypeCreated(a.ID(), key)
	}
	Config.logf(logrus.DebugLevel, "archivum: created archetype id=%d mask=%s", a.ID(), key)
	return a
}

// all returns every archetype in creation order.
func (idx *archetypeIndex) all() []*archetypeTable {
	return idx.order
}

func queryCacheKey(include, exclude bitset.Set) string {
	return include.Key() + "|" + exclude.Key()
}

// query returns every archetype whose mask contains all of include and
// none of exclude, using the epoch-validated cache.
func (idx *archetypeIndex) query(include, exclude bitset.Set) []*archetypeTable {
	key := queryCacheKey(include, exclude)
	if cached, ok := idx.cache[key]; ok && cached.epoch == idx.epoch {
		return cached.results
	}
	var results []*archetypeTable
	for _, a := range idx.order {
		if !a.mask.ContainsAll(include) {
			continue
		}
		if !exclude.IsEmpty() && a.mask.ContainsAny(exclude) {
			continue
		}
		results = append(results, a)
	}
	idx.cache[key] = cachedQuery{epoch: idx.epoch, results: results}
	return results
}

// setTrackingFilter installs the change-tracking component mask. Every
// archetype whose mask already overlaps filter gets a snapshot mirror
// immediately; every archetype created afterward is checked again at
// creation time in getOrCreate, so tracking coverage does not depend on
// creation order relative to this call (SPEC_FULL.md §5 item 3).
func (idx *archetypeIndex) setTrackingFilter(filter bitset.Set) {
	idx.tracked = filter
	if filter.IsEmpty() {
		return
	}
	for _, a := range idx.order {
		if a.mask.ContainsAny(filter) {
			a.ensureSnapshot()
		}
	}
}

// flushSnapshots copies every tracked archetype's committed row prefix
// into its snapshot mirror, per spec.md §6.
func (idx *archetypeIndex) flushSnapshots() {
	for _, a := range idx.order {
		a.flushSnapshot()
	}
}
