package cart

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/cartengine/internal/notify"
)

// spyPersister records every save so tests can assert the
// one-write-per-mutation contract and the written content.
type spyPersister struct {
	loadItems []LineItem
	loadErr   error
	saveErr   error
	saves     [][]LineItem
}

func (p *spyPersister) Load() ([]LineItem, error) {
	return p.loadItems, p.loadErr
}

func (p *spyPersister) Save(items []LineItem) error {
	p.saves = append(p.saves, cloneItems(items))
	return p.saveErr
}

func (p *spyPersister) lastSave() []LineItem {
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

// panicSink always panics to prove a sink cannot unwind a mutation.
type panicSink struct{}

func (panicSink) Notify(notify.Notification) { panic("sink exploded") }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *spyPersister, *notify.MemorySink) {
	t.Helper()
	spy := &spyPersister{}
	sink := notify.NewMemorySink()
	store := New(spy,
		WithSink(sink),
		WithEventIDs(NewSequenceGenerator("evt")),
		WithLogger(quietLogger()),
	)
	return store, spy, sink
}

func TestNew_LoadsPersistedSnapshot(t *testing.T) {
	spy := &spyPersister{loadItems: []LineItem{
		{ID: "A", Title: "Alpha Tee", UnitPrice: 100, Quantity: 2},
	}}

	store := New(spy, WithLogger(quietLogger()))

	require.Len(t, store.Items(), 1)
	assert.Equal(t, Totals{Amount: 200, Quantity: 2}, store.Totals())
	assert.Empty(t, spy.saves, "construction must not write")
}

func TestNew_LoadFailureStartsEmpty(t *testing.T) {
	spy := &spyPersister{loadErr: errors.New("disk on fire")}

	store := New(spy, WithLogger(quietLogger()))

	assert.Empty(t, store.Items())
	assert.Equal(t, Totals{}, store.Totals())
}

func TestAddItem_AppendsWithQuantityOne(t *testing.T) {
	store, spy, sink := newTestStore(t)

	// Candidate quantity is ignored; a fresh line always starts at 1.
	err := store.AddItem(LineItem{ID: "A", Title: "Alpha Tee", UnitPrice: 100, Quantity: 5})
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, Totals{Amount: 100, Quantity: 1}, store.Totals())

	require.Len(t, sink.Notifications(), 1)
	n := sink.Notifications()[0]
	assert.Equal(t, notify.KindItemAdded, n.Kind)
	assert.Equal(t, "evt-1", n.EventID)
	assert.Equal(t, "Alpha Tee added to cart", n.Message)

	require.Len(t, spy.saves, 1)
	assert.Equal(t, items, spy.lastSave())
}

func TestAddItem_MergesByID(t *testing.T) {
	store, _, sink := newTestStore(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 100}))
	}

	items := store.Items()
	require.Len(t, items, 1, "same id must never create a duplicate line")
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, Totals{Amount: 400, Quantity: 4}, store.Totals())

	kinds := notificationKinds(sink)
	assert.Equal(t, []notify.Kind{
		notify.KindItemAdded,
		notify.KindQuantityIncreased,
		notify.KindQuantityIncreased,
		notify.KindQuantityIncreased,
	}, kinds)
}

func TestAddItem_MergeIgnoresVariant(t *testing.T) {
	store, _, _ := newTestStore(t)

	require.NoError(t, store.AddItem(LineItem{
		ID: "A", UnitPrice: 120, Variant: map[string]string{"size": "M"},
	}))
	require.NoError(t, store.AddItem(LineItem{
		ID: "A", UnitPrice: 120, Variant: map[string]string{"size": "L"},
	}))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "M", items[0].Variant["size"], "first-added variant wins")
}

func TestAddItem_RejectsInvalidInput(t *testing.T) {
	store, spy, sink := newTestStore(t)

	assert.ErrorIs(t, store.AddItem(LineItem{UnitPrice: 10}), ErrMissingID)
	assert.ErrorIs(t, store.AddItem(LineItem{ID: "A", UnitPrice: 0}), ErrInvalidUnitPrice)
	assert.ErrorIs(t, store.AddItem(LineItem{ID: "A", UnitPrice: -3}), ErrInvalidUnitPrice)

	assert.Empty(t, store.Items(), "rejected input must not mutate")
	assert.Empty(t, spy.saves, "rejected input must not persist")
	assert.Empty(t, sink.Notifications(), "rejected input must not notify")
}

func TestRemoveItem(t *testing.T) {
	store, spy, sink := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{ID: "A", Title: "Alpha Mug", UnitPrice: 50}))
	require.NoError(t, store.AddItem(LineItem{ID: "B", Title: "Beta Mug", UnitPrice: 30}))

	store.RemoveItem("A")

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].ID)
	assert.Equal(t, Totals{Amount: 30, Quantity: 1}, store.Totals())
	assert.Equal(t, items, spy.lastSave())

	last := sink.Notifications()[len(sink.Notifications())-1]
	assert.Equal(t, notify.KindItemRemoved, last.Kind)
	assert.Equal(t, "Alpha Mug removed from cart", last.Message)
}

func TestRemoveItem_UnknownIDIsNoop(t *testing.T) {
	store, spy, sink := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 25}))
	savesBefore := len(spy.saves)
	notifsBefore := len(sink.Notifications())

	store.RemoveItem("Z")

	assert.Len(t, store.Items(), 1)
	assert.Equal(t, Totals{Amount: 25, Quantity: 1}, store.Totals())
	assert.Len(t, spy.saves, savesBefore, "no-op must not persist")
	assert.Len(t, sink.Notifications(), notifsBefore, "no-op must not notify")
}

func TestIncreaseQuantity(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))

	store.IncreaseQuantity("A")
	store.IncreaseQuantity("A")

	assert.Equal(t, 3, store.Items()[0].Quantity)
	assert.Equal(t, Totals{Amount: 30, Quantity: 3}, store.Totals())
}

func TestIncreaseQuantity_UnknownIDIsNoop(t *testing.T) {
	store, spy, _ := newTestStore(t)

	store.IncreaseQuantity("Z")

	assert.Empty(t, store.Items())
	assert.Empty(t, spy.saves)
}

func TestDecreaseQuantity(t *testing.T) {
	store, _, sink := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))
	store.IncreaseQuantity("A")

	store.DecreaseQuantity("A")

	assert.Equal(t, 1, store.Items()[0].Quantity)
	last := sink.Notifications()[len(sink.Notifications())-1]
	assert.Equal(t, notify.KindQuantityDecreased, last.Kind)
}

func TestDecreaseQuantity_FloorAtOne(t *testing.T) {
	store, spy, sink := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))
	savesBefore := len(spy.saves)
	notifsBefore := len(sink.Notifications())

	store.DecreaseQuantity("A")
	store.DecreaseQuantity("A")

	assert.Equal(t, 1, store.Items()[0].Quantity, "quantity must never drop below 1")
	assert.Len(t, spy.saves, savesBefore)
	assert.Len(t, sink.Notifications(), notifsBefore)
}

func TestClear(t *testing.T) {
	store, spy, sink := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))
	store.IncreaseQuantity("A")

	store.Clear()

	assert.Empty(t, store.Items())
	assert.Equal(t, Totals{}, store.Totals())
	assert.Empty(t, spy.lastSave(), "cleared snapshot must persist as empty")

	last := sink.Notifications()[len(sink.Notifications())-1]
	assert.Equal(t, notify.KindCartCleared, last.Kind)
	assert.Equal(t, "Cart cleared", last.Message)
}

func TestClear_Idempotent(t *testing.T) {
	store, _, _ := newTestStore(t)

	store.Clear()
	store.Clear()

	assert.Empty(t, store.Items())
	assert.Equal(t, Totals{}, store.Totals())
}

func TestTotalsAlwaysMatchItems(t *testing.T) {
	store, _, _ := newTestStore(t)

	ops := []func(){
		func() { _ = store.AddItem(LineItem{ID: "A", UnitPrice: 19.99}) },
		func() { _ = store.AddItem(LineItem{ID: "B", UnitPrice: 5}) },
		func() { store.IncreaseQuantity("A") },
		func() { _ = store.AddItem(LineItem{ID: "A", UnitPrice: 19.99}) },
		func() { store.DecreaseQuantity("B") },
		func() { store.RemoveItem("B") },
		func() { store.Clear() },
	}

	for i, op := range ops {
		op()
		assert.Equal(t, ComputeTotals(store.Items()), store.Totals(),
			"totals out of sync after op %d", i)
	}
}

func TestWriteThrough_OneSavePerMutation(t *testing.T) {
	store, spy, _ := newTestStore(t)

	// A user spamming "+" five times: five full applications, five
	// writes, nothing coalesced.
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))
	}

	require.Len(t, spy.saves, 5)
	assert.Equal(t, 5, spy.lastSave()[0].Quantity)
	assert.Equal(t, store.Items(), spy.lastSave())
}

func TestSaveFailure_KeepsMemoryAndWarns(t *testing.T) {
	spy := &spyPersister{saveErr: errors.New("slot unavailable")}
	sink := notify.NewMemorySink()
	store := New(spy,
		WithSink(sink),
		WithEventIDs(NewSequenceGenerator("evt")),
		WithLogger(quietLogger()),
	)

	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))

	assert.Len(t, store.Items(), 1, "in-memory state is authoritative")

	notifs := sink.Notifications()
	require.Len(t, notifs, 2)
	assert.Equal(t, notify.KindPersistWarning, notifs[0].Kind)
	assert.Equal(t, notify.KindItemAdded, notifs[1].Kind)
}

func TestSinkPanicDoesNotAbortMutation(t *testing.T) {
	spy := &spyPersister{}
	store := New(spy, WithSink(panicSink{}), WithLogger(quietLogger()))

	require.NotPanics(t, func() {
		require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))
	})
	assert.Len(t, store.Items(), 1)
	assert.Len(t, spy.saves, 1)
}

func TestSubscribe(t *testing.T) {
	store, _, _ := newTestStore(t)

	var snaps []Snapshot
	cancel := store.Subscribe(func(s Snapshot) { snaps = append(snaps, s) })

	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))
	store.Open()
	store.Close()
	store.RefreshTotals()

	require.Len(t, snaps, 4)
	assert.Equal(t, Totals{Amount: 10, Quantity: 1}, snaps[0].Totals)
	assert.True(t, snaps[1].IsOpen)
	assert.False(t, snaps[2].IsOpen)

	cancel()
	store.IncreaseQuantity("A")
	assert.Len(t, snaps, 4, "cancelled subscriber must not be called")

	// Cancel twice is safe.
	cancel()
}

func TestSubscribe_OrderPreserved(t *testing.T) {
	store, _, _ := newTestStore(t)

	var order []string
	store.Subscribe(func(Snapshot) { order = append(order, "first") })
	store.Subscribe(func(Snapshot) { order = append(order, "second") })

	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 10}))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestItemsReturnsDeepCopy(t *testing.T) {
	store, _, _ := newTestStore(t)
	require.NoError(t, store.AddItem(LineItem{
		ID: "A", UnitPrice: 10, Variant: map[string]string{"size": "M"},
	}))

	items := store.Items()
	items[0].Quantity = 99
	items[0].Variant["size"] = "XXL"

	fresh := store.Items()
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.Equal(t, "M", fresh[0].Variant["size"])
}

func TestOpenClose(t *testing.T) {
	store, spy, sink := newTestStore(t)

	store.Open()
	assert.True(t, store.IsOpen())

	store.Close()
	assert.False(t, store.IsOpen())

	assert.Empty(t, spy.saves, "visibility flag must not persist")
	assert.Empty(t, sink.Notifications(), "visibility flag must not notify")
}

func TestInsertionOrderPreserved(t *testing.T) {
	store, _, _ := newTestStore(t)

	for _, id := range []string{"C", "A", "B"} {
		require.NoError(t, store.AddItem(LineItem{ID: id, UnitPrice: 1}))
	}
	require.NoError(t, store.AddItem(LineItem{ID: "A", UnitPrice: 1}))

	var ids []string
	for _, it := range store.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"C", "A", "B"}, ids, "merging must not reorder lines")
}

func notificationKinds(sink *notify.MemorySink) []notify.Kind {
	var kinds []notify.Kind
	for _, n := range sink.Notifications() {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}
