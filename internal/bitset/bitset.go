// Package bitset implements the variable-width component-set bitmask used
// to identify archetypes. It mirrors the Mark/Unmark/ContainsAll/ContainsAny
// API shape of github.com/TheBitDrifter/mask (observed at warehouse's call
// sites) but grows to cover whatever bit index is set rather than staying
// fixed-width, per the BitMaskSet contract.
package bitset

import (
	"strconv"
	"strings"
)

const wordBits = 64

// Set is a variable-length bitmask over component bit indices. The zero
// value is an empty set. Sets are compared and keyed by value, not identity.
type Set struct {
	words []uint64
}

// New returns an empty Set.
func New() Set {
	return Set{}
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	if len(s.words) == 0 {
		return Set{}
	}
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return Set{words: words}
}

func wordIndex(bit uint32) int { return int(bit / wordBits) }
func wordMask(bit uint32) uint64 { return uint64(1) << (bit % wordBits) }

func (s *Set) ensure(idx int) {
	if idx < len(s.words) {
		return
	}
	grown := make([]uint64, idx+1)
	copy(grown, s.words)
	s.words = grown
}

// Mark sets bit, growing the backing storage if needed.
func (s *Set) Mark(bit uint32) {
	idx := wordIndex(bit)
	s.ensure(idx)
	s.words[idx] |= wordMask(bit)
}

// Unmark clears bit. No-op if bit was never within range.
func (s *Set) Unmark(bit uint32) {
	idx := wordIndex(bit)
	if idx >= len(s.words) {
		return
	}
	s.words[idx] &^= wordMask(bit)
}

// Test reports whether bit is set.
func (s Set) Test(bit uint32) bool {
	idx := wordIndex(bit)
	if idx >= len(s.words) {
		return false
	}
	return s.words[idx]&wordMask(bit) != 0
}

// IsEmpty reports whether no bit is set.
func (s Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// ContainsAll reports whether s is a superset of other (s ⊇ other).
func (s Set) ContainsAll(other Set) bool {
	for i, w := range other.words {
		if i >= len(s.words) {
			if w != 0 {
				return false
			}
			continue
		}
		if s.words[i]&w != w {
			return false
		}
	}
	return true
}

// ContainsAny reports whether s and other overlap (s ∧ other ≠ 0).
func (s Set) ContainsAny(other Set) bool {
	n := len(s.words)
	if len(other.words) < n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// ContainsNone reports whether s and other are disjoint.
func (s Set) ContainsNone(other Set) bool {
	return !s.ContainsAny(other)
}

// Equals reports value equality.
func (s Set) Equals(other Set) bool {
	n := len(s.words)
	if len(other.words) > n {
		n = len(other.words)
	}
	for i := 0; i < n; i++ {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		if a != b {
			return false
		}
	}
	return true
}

// Key returns a stable textual key, a comma-joined decimal of the limbs,
// deterministic across equal masks and suitable as a map key (Set itself
// holds a slice and is not comparable).
func (s Set) Key() string {
	// Trim trailing zero limbs so that equal masks always produce the same
	// key regardless of how many words were touched along the way.
	n := len(s.words)
	for n > 0 && s.words[n-1] == 0 {
		n--
	}
	if n == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(s.words[i], 10))
	}
	return b.String()
}

// Union returns a new Set containing bits set in either s or other.
func (s Set) Union(other Set) Set {
	n := len(s.words)
	if len(other.words) > n {
		n = len(other.words)
	}
	words := make([]uint64, n)
	for i := 0; i < n; i++ {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		words[i] = a | b
	}
	return Set{words: words}
}
