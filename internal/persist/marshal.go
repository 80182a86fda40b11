package persist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/marketbay/cartengine/internal/cart"
)

// EncodeSnapshot serializes line items as the snapshot wire format: a
// JSON array of line item objects, insertion order preserved. A nil or
// empty collection encodes as "[]" so that a cleared cart overwrites
// any previous slot content.
//
// HTML escaping is disabled: the snapshot is a storage format, not
// browser output, and titles like "Salt & Pepper Mill" must round-trip
// byte-identically for golden comparison.
func EncodeSnapshot(items []cart.LineItem) ([]byte, error) {
	if items == nil {
		items = []cart.LineItem{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	// Encoder adds a trailing newline, remove it.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeSnapshot parses the snapshot wire format back into line items.
//
// The decode is strict about the fields the engine depends on: every
// entry must carry a non-empty id and a quantity >= 1, otherwise the
// whole snapshot is rejected. Adapters translate a rejection into an
// empty load, never a partial cart, so a corrupted slot cannot smuggle
// invariant-breaking state into a fresh store.
func DecodeSnapshot(data []byte) ([]cart.LineItem, error) {
	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("decode snapshot: item %d has no id", i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("decode snapshot: item %q has quantity %d", it.ID, it.Quantity)
		}
	}
	return items, nil
}
