// Package persist provides durable snapshot slots for the cart engine.
//
// Each adapter implements cart.Persister over a different key-value
// medium:
//   - File: one JSON file on disk, replaced atomically on every save
//   - SQLite: a single-row slot in a WAL-mode database
//   - Redis: one key on a shared Redis instance
//   - Memory: in-process slot for tests and ephemeral sessions
//
// All adapters share the same snapshot wire format: a JSON array of
// line item objects (see EncodeSnapshot). Absent or malformed snapshots
// load as an empty cart rather than an error; the slot is best-effort
// storage and the in-memory cart is authoritative.
//
// The slot is a single shared resource: concurrent writers (two
// processes against the same file or key) follow last-writer-wins.
// There is no cross-process locking or merge, by accepted limitation.
package persist
