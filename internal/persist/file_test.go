package persist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/marketbay/cartengine/internal/cart"
)

func TestFile_LoadMissingFileIsEmpty(t *testing.T) {
	slot := NewFile(filepath.Join(t.TempDir(), "cart.json"))

	items, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(items))
	}
}

func TestFile_SaveLoadRoundTrip(t *testing.T) {
	slot := NewFile(filepath.Join(t.TempDir(), "cart.json"))
	items := []cart.LineItem{
		{ID: "A", Title: "Alpha Tee", UnitPrice: 100, Quantity: 2},
		{ID: "B", UnitPrice: 30, Quantity: 1, Variant: map[string]string{"color": "red"}},
	}

	if err := slot.Save(items); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// A fresh adapter over the same path sees the same items.
	loaded, err := NewFile(slot.Path()).Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(items, loaded) {
		t.Errorf("round trip mismatch:\n  in:  %+v\n  out: %+v", items, loaded)
	}
}

func TestFile_SaveReplacesPriorSnapshot(t *testing.T) {
	slot := NewFile(filepath.Join(t.TempDir(), "cart.json"))

	if err := slot.Save([]cart.LineItem{{ID: "A", UnitPrice: 10, Quantity: 3}}); err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	if err := slot.Save(nil); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	data, err := os.ReadFile(slot.Path())
	if err != nil {
		t.Fatalf("read snapshot file: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected cleared snapshot [], got %s", data)
	}
}

func TestFile_MalformedSnapshotLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := NewFile(path).Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected corrupted slot to load empty, got %d items", len(items))
	}
}

func TestFile_InvariantBreakingSnapshotLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	// Valid JSON, but quantity 0 violates the engine's floor invariant.
	if err := os.WriteFile(path, []byte(`[{"id":"A","unitPrice":10,"quantity":0}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := NewFile(path).Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected invariant-breaking slot to load empty, got %+v", items)
	}
}

func TestFile_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	slot := NewFile(filepath.Join(dir, "cart.json"))

	if err := slot.Save([]cart.LineItem{{ID: "A", UnitPrice: 10, Quantity: 1}}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file in %s, found %d entries", dir, len(entries))
	}
}
