package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/marketbay/cartengine/internal/cart"
	"github.com/marketbay/cartengine/internal/notify"
	"github.com/marketbay/cartengine/internal/persist"
	"github.com/marketbay/cartengine/internal/schema"
)

// TraceEvent is one entry in a scenario trace: either an operation
// applied to the store or a notification the store emitted.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Type    string `json:"type"` // "op" or "notification"
	Op      string `json:"op,omitempty"`
	ID      string `json:"id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	EventID string `json:"event_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and invariant held.
	Pass bool `json:"pass"`

	// Errors lists expectation and invariant failures.
	Errors []string `json:"errors,omitempty"`

	// Trace records operations and notifications in order.
	Trace []TraceEvent `json:"trace"`

	// Items and Totals are the final store state.
	Items  []cart.LineItem `json:"items"`
	Totals cart.Totals     `json:"totals"`
}

// addError records a failure and marks the result failed.
func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes the scenario against a fresh store with an in-memory
// slot, sequence event ids and a recording sink, then checks the
// scenario's expectation plus the engine's standing invariants.
//
// The returned error covers harness-level problems (a step that cannot
// be applied); expectation failures land in Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	slot := persist.NewMemory()
	sink := notify.NewMemorySink()
	store := cart.New(slot,
		cart.WithSink(sink),
		cart.WithEventIDs(cart.NewSequenceGenerator("evt")),
		cart.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	result := &Result{Pass: true, Trace: []TraceEvent{}}
	seq := 0
	seen := 0

	for i, step := range scenario.Steps {
		seq++
		ev := TraceEvent{Seq: seq, Type: "op", Op: step.Op}
		switch step.Op {
		case OpAdd:
			ev.ID = step.Item.ID
		case OpRemove, OpIncrease, OpDecrease:
			ev.ID = step.ID
		}
		result.Trace = append(result.Trace, ev)

		if err := applyStep(store, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}

		// Append any notifications the step produced.
		for _, n := range sink.Notifications()[seen:] {
			seq++
			result.Trace = append(result.Trace, TraceEvent{
				Seq:     seq,
				Type:    "notification",
				Kind:    string(n.Kind),
				EventID: n.EventID,
				Message: n.Message,
			})
			seen++
		}
	}

	result.Items = store.Items()
	result.Totals = store.Totals()

	checkInvariants(result, slot)
	if scenario.Expect != nil {
		checkExpectation(result, scenario.Expect)
	}
	return result, nil
}

// applyStep drives one store operation.
func applyStep(store *cart.Store, step Step) error {
	switch step.Op {
	case OpAdd:
		return store.AddItem(step.Item.lineItem())
	case OpRemove:
		store.RemoveItem(step.ID)
	case OpIncrease:
		store.IncreaseQuantity(step.ID)
	case OpDecrease:
		store.DecreaseQuantity(step.ID)
	case OpClear:
		store.Clear()
	case OpOpen:
		store.Open()
	case OpClose:
		store.Close()
	case OpRefresh:
		store.RefreshTotals()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// checkInvariants asserts the properties every run must satisfy,
// regardless of scenario expectations.
func checkInvariants(result *Result, slot *persist.Memory) {
	// Totals are a pure function of items.
	if want := cart.ComputeTotals(result.Items); result.Totals != want {
		result.addError("totals %+v do not match recomputation %+v", result.Totals, want)
	}

	// Quantity floor.
	for _, it := range result.Items {
		if it.Quantity < 1 {
			result.addError("item %q has quantity %d", it.ID, it.Quantity)
		}
	}

	encoded, err := persist.EncodeSnapshot(result.Items)
	if err != nil {
		result.addError("encode final items: %v", err)
		return
	}

	// Write-through: the durable slot matches memory after the last
	// mutation. Skipped when no step mutated the cart.
	if slot.Saves() > 0 && !bytes.Equal(slot.Bytes(), encoded) {
		result.addError("persisted slot %s does not match items %s", slot.Bytes(), encoded)
	}

	// Wire format conformance.
	if err := schema.Validate(encoded); err != nil {
		result.addError("snapshot schema: %v", err)
	}
}

// checkExpectation compares the final state against the scenario's
// expect block.
func checkExpectation(result *Result, expect *Expectation) {
	if len(result.Items) != len(expect.Items) {
		result.addError("expected %d items, got %d", len(expect.Items), len(result.Items))
	} else {
		for i, want := range expect.Items {
			got := result.Items[i]
			if got.ID != want.ID {
				result.addError("item %d: expected id %q, got %q", i, want.ID, got.ID)
			}
			if got.Quantity != want.Quantity {
				result.addError("item %q: expected quantity %d, got %d", want.ID, want.Quantity, got.Quantity)
			}
			if want.UnitPrice != nil && got.UnitPrice != *want.UnitPrice {
				result.addError("item %q: expected unit price %v, got %v", want.ID, *want.UnitPrice, got.UnitPrice)
			}
		}
	}

	if expect.Totals != nil {
		if result.Totals.Amount != expect.Totals.Amount {
			result.addError("expected total amount %v, got %v", expect.Totals.Amount, result.Totals.Amount)
		}
		if result.Totals.Quantity != expect.Totals.Quantity {
			result.addError("expected total quantity %d, got %d", expect.Totals.Quantity, result.Totals.Quantity)
		}
	}
}
