package localstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store, path
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	if err := store.Set("pending_reports", `{"schema_version":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := store.Get("pending_reports")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected the key to exist")
	}
	if v != `{"schema_version":1}` {
		t.Errorf("Got %q, expected the stored value", v)
	}
}

func TestGetMissingKey(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	_, ok, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Missing key must report absent, not an error")
	}
}

func TestSetOverwrites(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	store.Set("k", "first")
	store.Set("k", "second")

	v, _, err := store.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "second" {
		t.Errorf("Got %q, expected the overwritten value", v)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := openTestStore(t)
	defer store.Close()

	store.Set("k", "v")
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("Deleting a missing key must be a no-op: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("Key must be gone after Delete")
	}
}

func TestSurvivesReopen(t *testing.T) {
	store, path := openTestStore(t)
	store.Set("k", "durable")
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	if err != nil || !ok || v != "durable" {
		t.Errorf("Value did not survive reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}
