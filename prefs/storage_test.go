package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	s, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	if _, ok, err := s.Get("darkTheme"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	if err := s.Set("darkTheme", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("other", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := reopened.Get("darkTheme")
	if err != nil || !ok || v != "true" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	if err := reopened.Delete("darkTheme"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := reopened.Get("darkTheme"); ok {
		t.Error("key should be gone")
	}
	if v, _, _ := reopened.Get("other"); v != "x" {
		t.Errorf("other key lost: %q", v)
	}
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	if _, _, err := s.Get("darkTheme"); err == nil {
		t.Fatal("expected decode error")
	}
	if err := s.Set("darkTheme", "false"); err != nil {
		t.Fatalf("Set should replace a corrupt file: %v", err)
	}
	if v, ok, err := s.Get("darkTheme"); err != nil || !ok || v != "false" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
}

func TestMemoryStorageErr(t *testing.T) {
	m := NewMemoryStorage()
	if err := m.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("quota exceeded")
	m.Err = boom
	if err := m.Set("k", "w"); !errors.Is(err, boom) {
		t.Fatalf("Set err = %v", err)
	}
	m.Err = nil
	if v, _, _ := m.Get("k"); v != "v" {
		t.Errorf("value changed despite error: %q", v)
	}
}
