package cart

// Totals is the derived aggregate over the cart's line items. It is
// always a pure function of the items and never independently mutated.
type Totals struct {
	Amount   float64 `json:"amount"`
	Quantity int     `json:"quantity"`
}

// ComputeTotals derives the aggregate amount and quantity from items.
//
// Deterministic, no side effects, O(n). An empty or nil collection
// yields zero totals. Amounts use the stored per-line unit price, not a
// live re-priced value, and no rounding is applied beyond float64's
// native precision.
func ComputeTotals(items []LineItem) Totals {
	var t Totals
	for _, it := range items {
		t.Amount += it.Subtotal()
		t.Quantity += it.Quantity
	}
	return t
}
