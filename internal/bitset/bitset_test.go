package bitset

import "testing"

func TestMarkUnmark(t *testing.T) {
	tests := []struct {
		name string
		bit  uint32
	}{
		{"low bit", 0},
		{"mid bit", 63},
		{"crosses word boundary", 64},
		{"high bit", 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Set
			if s.Test(tt.bit) {
				t.Fatalf("bit %d set before Mark", tt.bit)
			}
			s.Mark(tt.bit)
			if !s.Test(tt.bit) {
				t.Errorf("bit %d not set after Mark", tt.bit)
			}
			s.Unmark(tt.bit)
			if s.Test(tt.bit) {
				t.Errorf("bit %d still set after Unmark", tt.bit)
			}
		})
	}
}

func TestContainsAllAnyNone(t *testing.T) {
	var a, b Set
	a.Mark(1)
	a.Mark(5)
	b.Mark(1)

	if !a.ContainsAll(b) {
		t.Errorf("a should contain all of b")
	}
	if b.ContainsAll(a) {
		t.Errorf("b should not contain all of a")
	}
	if !a.ContainsAny(b) {
		t.Errorf("a and b should overlap")
	}

	var c Set
	c.Mark(9)
	if !a.ContainsNone(c) {
		t.Errorf("a and c should be disjoint")
	}
	if a.ContainsAny(c) {
		t.Errorf("a and c should not overlap")
	}
}

func TestKeyDeterministic(t *testing.T) {
	var a, b Set
	a.Mark(5)
	a.Mark(130)
	b.Mark(130)
	b.Mark(5)

	if a.Key() != b.Key() {
		t.Errorf("Key() = %q, %q; want equal for equal masks", a.Key(), b.Key())
	}

	var c Set
	c.Mark(5)
	if a.Key() == c.Key() {
		t.Errorf("Key() collided for unequal masks")
	}
}

func TestKeyEmpty(t *testing.T) {
	var s Set
	s.Mark(3)
	s.Unmark(3)
	if s.Key() != "" {
		t.Errorf("Key() on empty set = %q, want empty string", s.Key())
	}
}

func TestIsEmpty(t *testing.T) {
	var s Set
	if !s.IsEmpty() {
		t.Errorf("zero value Set should be empty")
	}
	s.Mark(2)
	if s.IsEmpty() {
		t.Errorf("Set should not be empty after Mark")
	}
	s.Unmark(2)
	if !s.IsEmpty() {
		t.Errorf("Set should be empty after Unmark of its only bit")
	}
}

func TestEquals(t *testing.T) {
	var a, b Set
	a.Mark(70)
	b.Mark(70)
	if !a.Equals(b) {
		t.Errorf("a and b should be equal")
	}
	b.Mark(200)
	if a.Equals(b) {
		t.Errorf("a and b should differ once b gains an extra bit")
	}
}
