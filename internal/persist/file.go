package persist

import (
	"fmt"
	"os"

	"github.com/marketbay/cartengine/internal/cart"
)

// File is a snapshot slot backed by a single JSON file, the closest
// server-less analog to a browser's localStorage entry: one durable
// value per path, surviving process restarts.
type File struct {
	path string
}

// NewFile creates a file-backed slot at the given path. The file is not
// created until the first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the slot. A missing or malformed file loads as an empty
// cart; only filesystem errors other than non-existence are returned.
func (f *File) Load() ([]cart.LineItem, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	items, err := DecodeSnapshot(data)
	if err != nil {
		// Corrupted slot: start empty rather than fail the session.
		return nil, nil
	}
	return items, nil
}

// Save replaces the slot with the given items. The write goes to a
// temporary file in the same directory followed by a rename, so a crash
// mid-write leaves the previous snapshot intact rather than a truncated
// one.
func (f *File) Save(items []cart.LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
