package notify

import (
	"log/slog"
	"sync"
)

// Kind classifies a notification by the mutation that produced it.
type Kind string

const (
	// KindItemAdded reports a new line item appended to the cart.
	KindItemAdded Kind = "item_added"
	// KindQuantityIncreased reports an existing line's quantity going up by one.
	KindQuantityIncreased Kind = "quantity_increased"
	// KindQuantityDecreased reports an existing line's quantity going down by one.
	KindQuantityDecreased Kind = "quantity_decreased"
	// KindItemRemoved reports a line item deleted from the cart.
	KindItemRemoved Kind = "item_removed"
	// KindCartCleared reports the whole cart being emptied.
	KindCartCleared Kind = "cart_cleared"
	// KindPersistWarning reports a failed durable write. The in-memory
	// mutation it accompanies has still been applied.
	KindPersistWarning Kind = "persist_warning"
)

// Notification is one outcome report emitted by the cart store.
type Notification struct {
	// EventID correlates the notification with the mutation that produced it.
	EventID string `json:"event_id"`
	// Kind classifies the outcome.
	Kind Kind `json:"kind"`
	// Message is the human-readable confirmation text.
	Message string `json:"message"`
}

// Sink receives notifications, fire-and-forget.
//
// Implementations must not block and must not panic: a notification is
// delivered while the store is mid-operation, and the store treats the
// sink as side-effect-only.
type Sink interface {
	Notify(n Notification)
}

// NopSink discards all notifications.
type NopSink struct{}

// Notify implements Sink.
func (NopSink) Notify(Notification) {}

// SlogSink logs each notification through a slog.Logger.
type SlogSink struct {
	log *slog.Logger
}

// NewSlogSink creates a sink that logs to the given logger.
// A nil logger falls back to slog.Default().
func NewSlogSink(log *slog.Logger) *SlogSink {
	if log == nil {
		log = slog.Default()
	}
	return &SlogSink{log: log}
}

// Notify implements Sink. Persist warnings log at warn level,
// everything else at info.
func (s *SlogSink) Notify(n Notification) {
	attrs := []any{
		slog.String("kind", string(n.Kind)),
		slog.String("event_id", n.EventID),
	}
	if n.Kind == KindPersistWarning {
		s.log.Warn(n.Message, attrs...)
		return
	}
	s.log.Info(n.Message, attrs...)
}

// MemorySink records notifications in delivery order.
//
// Thread-safe so tests can inspect it while a store is in use, though in
// practice delivery is serialized by the store's own lock.
type MemorySink struct {
	mu            sync.Mutex
	notifications []Notification
}

// NewMemorySink creates an empty recording sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Notify implements Sink.
func (s *MemorySink) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

// Notifications returns a copy of everything recorded so far.
func (s *MemorySink) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Reset discards recorded notifications.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}
