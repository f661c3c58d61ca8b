package xcal

import (
	"errors"
	"testing"
)

func TestSequenceKeyGenerator(t *testing.T) {
	gen := NewSequenceKeyGenerator("ev")
	if got := gen.NextKey(); got != "ev-1" {
		t.Errorf("first key = %q, want %q", got, "ev-1")
	}
	if got := gen.NextKey(); got != "ev-2" {
		t.Errorf("second key = %q, want %q", got, "ev-2")
	}
}

func TestUUIDKeyGeneratorUnique(t *testing.T) {
	var gen UUIDKeyGenerator
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k := gen.NextKey()
		if k == "" {
			t.Fatal("generated empty key")
		}
		if seen[k] {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = true
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreError("insert event", cause)
	if !errors.Is(err, ErrStore) {
		t.Error("store error does not match ErrStore")
	}
	if !errors.Is(err, cause) {
		t.Error("store error does not match its cause")
	}
	if want := "insert event: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if StoreError("noop", nil) != nil {
		t.Error("nil cause should return nil")
	}
}
