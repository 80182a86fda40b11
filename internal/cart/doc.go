// Package cart implements the client-side cart engine of the storefront.
//
// The Store owns an ordered collection of line items and is the only
// mutation entry point. Every mutating operation is a single atomic step:
//
//	validate -> mutate -> recompute totals -> persist -> notify -> broadcast
//
// Persistence is write-through: each successful mutation produces exactly
// one durable write, never batched. A failed write does not roll back the
// in-memory mutation; memory is authoritative for the session and the
// failure is reported as a warning notification.
//
// Merge identity is the product id alone. Adding an id that is already in
// the cart increments its quantity; variant attributes (size, color) do
// not participate in identity and the first-added variant's attributes are
// kept. This mirrors the storefront's observed behavior and is a product
// decision to confirm, not one this package second-guesses.
package cart
