package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EventIDGenerator produces the identifiers stamped onto notifications.
// Each mutation gets one id, so a notification can be correlated with
// the store operation that produced it in logs and traces.
//
// Implemented by UUIDv7Generator (production) and SequenceGenerator /
// FixedGenerator (deterministic tests and golden traces).
type EventIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 event ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, making ids
// sortable by creation time, which keeps log output readable.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns "prefix-1", "prefix-2", ... in order.
// Used by the scenario harness so golden traces are byte-stable.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequenceGenerator creates a counter-based generator.
// An empty prefix defaults to "evt".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "evt"
	}
	return &SequenceGenerator{prefix: prefix, next: 1}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("%s-%d", g.prefix, g.next)
	g.next++
	return id
}

// FixedGenerator returns predetermined ids for testing.
//
// Panics once all ids are consumed. This is a fail-fast approach to
// catch test misconfiguration (more mutations than the test expected).
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
