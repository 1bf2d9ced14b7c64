package archivum

import "testing"

func TestRegistryInternIsIdempotentByIdentity(t *testing.T) {
	r := NewRegistry(8)
	a, err := r.DefineTag("Enemy")
	if err != nil {
		t.Fatalf("DefineTag: %v", err)
	}
	b, err := r.DefineTag("Enemy")
	if err != nil {
		t.Fatalf("DefineTag (second): %v", err)
	}
	if a.ID() != b.ID() {
		t.Errorf("re-defining %q by name produced a new identity: %d != %d", "Enemy", a.ID(), b.ID())
	}
}

func TestRegistryAssignsDenseSequentialIDs(t *testing.T) {
	r := NewRegistry(8)
	defs := make([]*ComponentDef, 4)
	names := []string{"A", "B", "C", "D"}
	for i, n := range names {
		def, err := r.DefineTag(n)
		if err != nil {
			t.Fatalf("DefineTag(%s): %v", n, err)
		}
		defs[i] = def
	}
	for i, def := range defs {
		if int(def.ID()) != i {
			t.Errorf("def %q got id %d, want %d", def.Name(), def.ID(), i)
		}
	}
}

func TestRegistryCapacityExceeded(t *testing.T) {
	r := NewRegistry(1)
	if _, err := r.DefineTag("First"); err != nil {
		t.Fatalf("DefineTag: %v", err)
	}
	if _, err := r.DefineTag("Second"); err == nil {
		t.Fatalf("expected CacheFullError defining past capacity")
	}
}

func TestRegistryDefineSchemaDeterministicFieldOrder(t *testing.T) {
	r1 := NewRegistry(8)
	r2 := NewRegistry(8)
	fields := map[string]string{"z": "f32", "a": "f32", "m": "i32"}

	d1, err := r1.DefineSchema("Position", fields)
	if err != nil {
		t.Fatalf("DefineSchema: %v", err)
	}
	d2, err := r2.DefineSchema("Position", fields)
	if err != nil {
		t.Fatalf("DefineSchema: %v", err)
	}
	for _, name := range []string{"a", "m", "z"} {
		ref1, ok1 := d1.Field(name)
		ref2, ok2 := d2.Field(name)
		if !ok1 || !ok2 {
			t.Fatalf("field %q missing in one registry", name)
		}
		if ref1.index != ref2.index {
			t.Errorf("field %q index not deterministic: %d vs %d", name, ref1.index, ref2.index)
		}
	}
}

func TestParseFieldKind(t *testing.T) {
	tests := []struct {
		token      string
		wantKind   FieldKind
		wantStride int
		wantErr    bool
	}{
		{"f32", KindF32, 1, false},
		{"f64", KindF64, 1, false},
		{"i16[3]", KindI16, 3, false},
		{"string", KindString, 1, false},
		{"u32[1]", KindU32, 1, false},
		{"bogus", 0, 0, true},
		{"f32[0]", 0, 0, true},
		{"f32[x]", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			kind, stride, err := ParseFieldKind(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFieldKind(%q) = nil error, want error", tt.token)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldKind(%q): %v", tt.token, err)
			}
			if kind != tt.wantKind || stride != tt.wantStride {
				t.Errorf("ParseFieldKind(%q) = (%v, %d), want (%v, %d)", tt.token, kind, stride, tt.wantKind, tt.wantStride)
			}
		})
	}
}

func TestRedefineWithConflictingSchemaErrors(t *testing.T) {
	r := NewRegistry(8)
	if _, err := r.DefineUniform("Position", KindF32, 1, "x", "y"); err != nil {
		t.Fatalf("DefineUniform: %v", err)
	}
	_, err := r.DefineUniform("Position", KindF32, 1, "x", "y", "z")
	if _, ok := err.(ComponentAlreadyDefinedError); !ok {
		t.Fatalf("redefine with different fields err = %v (%T), want ComponentAlreadyDefinedError", err, err)
	}
}

func TestDefineTagHasNoFields(t *testing.T) {
	r := NewRegistry(4)
	def, err := r.DefineTag("Dead")
	if err != nil {
		t.Fatalf("DefineTag: %v", err)
	}
	if !def.IsTag() {
		t.Errorf("tag component reports IsTag() == false")
	}
}
