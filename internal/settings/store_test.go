package settings

import "testing"

func TestStoreGetSetCoercesBooleanStrings(t *testing.T) {
	s := NewStoreWithSalt("test-salt")

	if err := s.Set("FLAG", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok := s.Get("FLAG")
	if !ok {
		t.Fatal("expected FLAG to be present")
	}
	b, ok := v.(bool)
	if !ok || !b {
		t.Errorf("Get(FLAG) = %#v, want true", v)
	}
}

func TestStoreGetReturnsDecryptedSecret(t *testing.T) {
	s := NewStoreWithSalt("test-salt")
	if err := s.Set("API_KEY", "super-secret"); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok := s.Get("API_KEY")
	if !ok {
		t.Fatal("expected API_KEY to be present")
	}
	if v != "super-secret" {
		t.Errorf("Get(API_KEY) = %v, want super-secret", v)
	}
}

func TestStoreNonStringValuesPassThrough(t *testing.T) {
	s := NewStoreWithSalt("test-salt")
	if err := s.Set("LIMIT", 42); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok := s.Get("LIMIT")
	if !ok || v != 42 {
		t.Errorf("Get(LIMIT) = %#v, want 42", v)
	}
}

func TestStoreMigrateAll(t *testing.T) {
	s := NewStoreWithSalt("test-salt")
	s.SetPlain("LEGACY", "v1-shaped-but-not-actually-ciphertext")
	if err := s.MigrateAll(); err != nil {
		t.Fatalf("migrate all: %v", err)
	}
}
