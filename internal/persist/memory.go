package persist

import (
	"sync"

	"github.com/marketbay/cartengine/internal/cart"
)

// Memory is an in-process snapshot slot. It stores the encoded wire
// format rather than the items themselves so it behaves exactly like
// the durable adapters, round-trip included. Used by tests, the
// scenario harness, and ephemeral sessions that want no durability.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemory creates an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{}
}

// Load decodes the last saved snapshot, or an empty cart if nothing was
// saved yet.
func (m *Memory) Load() ([]cart.LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	items, err := DecodeSnapshot(m.data)
	if err != nil {
		return nil, nil
	}
	return items, nil
}

// Save encodes and stores the items.
func (m *Memory) Save(items []cart.LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.saves++
	return nil
}

// Bytes returns the raw stored snapshot, or nil if nothing was saved.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Saves returns how many times Save has been called. Tests use this to
// assert the one-write-per-mutation contract.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
