package cart

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/marketbay/cartengine/internal/notify"
)

// Persister is the durable snapshot slot the store writes through to.
//
// Load returns the previously persisted items. An absent or malformed
// snapshot is not an error: implementations return (nil, nil) so the
// store starts empty. Only transport failures (broken database, dead
// connection) are returned as errors, and the store still falls back to
// an empty cart after logging them.
//
// Save replaces the whole slot with the given items. It is called
// synchronously once per successful mutation.
type Persister interface {
	Load() ([]LineItem, error)
	Save(items []LineItem) error
}

// Snapshot is the read-only view handed to subscribers and UI readers.
// Items is a deep copy; mutating it has no effect on the store.
type Snapshot struct {
	Items  []LineItem `json:"items"`
	Totals Totals     `json:"totals"`
	IsOpen bool       `json:"isOpen"`
}

// Store is the cart state machine. It owns the ordered line item
// collection exclusively and exposes the only mutation entry points.
//
// Every mutating operation runs as one atomic step under the store lock:
// validate, mutate, recompute totals, persist, notify, broadcast. Rapid
// repeated calls (a user clicking "+" five times) each apply fully, with
// their own durable write and notification; nothing is coalesced.
//
// INVARIANTS:
//   - at most one line item per product id, in insertion order
//   - every line item quantity is >= 1
//   - totals always equal ComputeTotals(items) when the lock is released
//   - one Save call per successful mutation, none for no-ops
//
// Subscribers are invoked while the lock is held and must not call back
// into the store.
type Store struct {
	mu        sync.Mutex
	persister Persister
	sink      notify.Sink
	log       *slog.Logger
	events    EventIDGenerator
	msgs      *notify.Messages

	items  []LineItem
	totals Totals
	isOpen bool

	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithSink sets the notification sink. Default: notify.NopSink.
func WithSink(sink notify.Sink) Option {
	return func(s *Store) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the logger used for load/save failures.
// Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEventIDs sets the generator for notification event ids.
// Default: UUIDv7Generator.
func WithEventIDs(gen EventIDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.events = gen
		}
	}
}

// WithMessages sets the locale-specific notification text builder.
// Default: notify.DefaultMessages (en-US, USD).
func WithMessages(msgs *notify.Messages) Option {
	return func(s *Store) {
		if msgs != nil {
			s.msgs = msgs
		}
	}
}

// New creates a store backed by the given persister and loads any
// previously persisted snapshot. A failed load logs a warning and
// starts the session with an empty cart; it never fails construction.
//
// The store is session-scoped: there is no teardown beyond letting it
// be collected (the persister's own Close, if any, belongs to the
// caller that opened it).
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		sink:      notify.NopSink{},
		log:       slog.Default(),
		events:    UUIDv7Generator{},
		msgs:      notify.DefaultMessages(),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := p.Load()
	if err != nil {
		s.log.Warn("cart snapshot load failed, starting empty", "err", err)
		items = nil
	}
	s.items = cloneItems(items)
	s.totals = ComputeTotals(s.items)
	return s
}

// AddItem adds the candidate product to the cart.
//
// If the product id is already present its quantity goes up by one and
// the candidate's title, variant and image are ignored: merge identity
// is the id alone, and the first-added variant's attributes win.
// Otherwise the candidate is appended with quantity 1 (any quantity on
// the candidate is ignored).
//
// Returns a validation error, wrapping ErrMissingID or
// ErrInvalidUnitPrice, when the candidate has no id or a non-positive
// unit price. Nothing is mutated or persisted in that case.
func (s *Store) AddItem(candidate LineItem) error {
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(candidate.ID); i >= 0 {
		s.items[i].Quantity++
		s.commit(notify.KindQuantityIncreased, s.msgs.QuantityIncreased(s.items[i].name()))
		return nil
	}

	item := candidate.clone()
	item.Quantity = 1
	s.items = append(s.items, item)
	s.commit(notify.KindItemAdded, s.msgs.ItemAdded(item.name()))
	return nil
}

// RemoveItem deletes the line with the given product id. Unknown ids
// are a silent no-op: no write, no notification, state unchanged.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	name := s.items[i].name()
	s.items = slices.Delete(s.items, i, i+1)
	s.commit(notify.KindItemRemoved, s.msgs.ItemRemoved(name))
}

// IncreaseQuantity increments the quantity of the line with the given
// id. Unknown ids are a silent no-op.
func (s *Store) IncreaseQuantity(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items[i].Quantity++
	s.commit(notify.KindQuantityIncreased, s.msgs.QuantityIncreased(s.items[i].name()))
}

// DecreaseQuantity decrements the quantity of the line with the given
// id. Quantity never goes below 1: decrementing a line already at 1 is
// a no-op, not a removal (use RemoveItem to delete the line). Unknown
// ids are a silent no-op.
func (s *Store) DecreaseQuantity(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.items[i].Quantity <= 1 {
		return
	}
	s.items[i].Quantity--
	s.commit(notify.KindQuantityDecreased, s.msgs.QuantityDecreased(s.items[i].name()))
}

// Clear empties the cart and persists the empty snapshot. Clearing an
// already-empty cart is safe and still notifies, persisting "[]" again.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit(notify.KindCartCleared, s.msgs.CartCleared())
}

// Open marks the cart UI as visible. The flag is transient: it is
// neither persisted nor notified, but subscribers see the new state.
func (s *Store) Open() {
	s.setOpen(true)
}

// Close marks the cart UI as hidden. See Open.
func (s *Store) Close() {
	s.setOpen(false)
}

func (s *Store) setOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isOpen = open
	s.broadcast()
}

// RefreshTotals recomputes totals from the current items. Mutating
// operations already do this internally; it exists for code paths that
// obtained items elsewhere and need the aggregates re-derived.
func (s *Store) RefreshTotals() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals = ComputeTotals(s.items)
	s.broadcast()
}

// Items returns a deep copy of the current line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Totals returns the current derived aggregates.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// IsOpen reports the transient UI-visibility flag.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Snapshot returns the full read-only view in one call.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every mutation,
// in invocation order. The returned cancel function removes the
// subscription; it is safe to call more than once.
//
// fn runs while the store lock is held and must not call back into the
// store.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

// commit finishes a mutation: totals refresh, write-through persist,
// notification, subscriber broadcast. Called with the lock held.
//
// A failed save is logged and surfaced as a persist_warning
// notification, but never unwinds the mutation; the in-memory state is
// authoritative for the session.
func (s *Store) commit(kind notify.Kind, message string) {
	s.totals = ComputeTotals(s.items)

	if err := s.persister.Save(s.items); err != nil {
		s.log.Warn("cart snapshot save failed", "err", err)
		s.emit(notify.KindPersistWarning, s.msgs.PersistWarning(err))
	}

	s.emit(kind, message)
	s.broadcast()
}

// emit delivers one notification, shielding the store from a
// misbehaving sink: a panic in Notify is logged and swallowed so the
// mutation that triggered it still completes.
func (s *Store) emit(kind notify.Kind, message string) {
	n := notify.Notification{
		EventID: s.events.Generate(),
		Kind:    kind,
		Message: message,
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("notification sink panicked",
				"kind", string(kind), "panic", fmt.Sprint(r))
		}
	}()
	s.sink.Notify(n)
}

// broadcast hands the current snapshot to every subscriber in
// registration order. Called with the lock held.
func (s *Store) broadcast() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, sub := range s.subs {
		sub.fn(snap)
	}
}

// snapshotLocked builds a read-only view. Called with the lock held.
func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:  cloneItems(s.items),
		Totals: s.totals,
		IsOpen: s.isOpen,
	}
}

// indexOf returns the position of the line with the given id, or -1.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(it LineItem) bool {
		return it.ID == id
	})
}
