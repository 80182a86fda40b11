package cart

import (
	"errors"
	"fmt"
	"maps"
)

// Validation errors returned by Store.AddItem.
var (
	// ErrMissingID indicates a candidate line item without a product id.
	ErrMissingID = errors.New("line item id is required")
	// ErrInvalidUnitPrice indicates a candidate with a zero or negative price.
	ErrInvalidUnitPrice = errors.New("unit price must be positive")
)

// LineItem is one distinct product entry in the cart: the product id,
// the unit price captured at the moment the item was added, and the
// count of units. Title, variant and image are informational fields
// attached by the UI layer and carried through to the durable snapshot
// untouched.
type LineItem struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	UnitPrice float64           `json:"unitPrice"`
	Quantity  int               `json:"quantity"`
	Variant   map[string]string `json:"variant,omitempty"`
	Image     string            `json:"image,omitempty"`
}

// Validate checks the fields the engine depends on. It does not enforce
// a closed schema; unknown concerns belong to the UI layer.
func (it LineItem) Validate() error {
	if it.ID == "" {
		return ErrMissingID
	}
	if it.UnitPrice <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidUnitPrice, it.UnitPrice)
	}
	return nil
}

// Subtotal returns unit price times quantity for this line.
func (it LineItem) Subtotal() float64 {
	return it.UnitPrice * float64(it.Quantity)
}

// name returns the display name used in notifications: the title when
// the UI attached one, the product id otherwise.
func (it LineItem) name() string {
	if it.Title != "" {
		return it.Title
	}
	return it.ID
}

// clone returns a deep copy. The variant map must be copied so that
// snapshots handed to subscribers cannot alias store-owned state.
func (it LineItem) clone() LineItem {
	out := it
	if it.Variant != nil {
		out.Variant = maps.Clone(it.Variant)
	}
	return out
}

// cloneItems deep-copies a line item slice.
func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}
