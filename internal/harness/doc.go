// Package harness runs declarative cart scenarios.
//
// A scenario is a YAML file describing a sequence of cart operations
// and the expected final items and totals. The harness executes the
// sequence against a fresh store with an in-memory slot and a recording
// sink, producing a deterministic trace of operations and notifications
// that can be compared against golden files.
//
// Beyond per-scenario expectations, every run asserts the engine's
// standing invariants: totals match the pure recomputation, the
// persisted slot equals the in-memory items byte-for-byte, and the
// snapshot conforms to the CUE schema.
package harness
