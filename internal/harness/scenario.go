package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/marketbay/cartengine/internal/cart"
)

// Operation names accepted in scenario steps.
const (
	OpAdd      = "add"
	OpRemove   = "remove"
	OpIncrease = "increase"
	OpDecrease = "decrease"
	OpClear    = "clear"
	OpOpen     = "open"
	OpClose    = "close"
	OpRefresh  = "refresh"
)

// Scenario defines one declarative cart test: a sequence of operations
// and the expected final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps is the operation sequence, applied in order.
	Steps []Step `yaml:"steps"`

	// Expect validates the final items and totals. Optional: a
	// golden-only scenario may rely on trace comparison alone.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Step is a single cart operation.
type Step struct {
	// Op is one of the operation constants above.
	Op string `yaml:"op"`

	// ID is the product id for remove/increase/decrease.
	ID string `yaml:"id,omitempty"`

	// Item is the candidate line item for add.
	Item *ItemSpec `yaml:"item,omitempty"`
}

// ItemSpec is the YAML shape of an add candidate.
type ItemSpec struct {
	ID        string            `yaml:"id"`
	Title     string            `yaml:"title,omitempty"`
	UnitPrice float64           `yaml:"unitPrice"`
	Variant   map[string]string `yaml:"variant,omitempty"`
	Image     string            `yaml:"image,omitempty"`
}

// lineItem converts the YAML shape into the engine's value type.
func (is ItemSpec) lineItem() cart.LineItem {
	return cart.LineItem{
		ID:        is.ID,
		Title:     is.Title,
		UnitPrice: is.UnitPrice,
		Variant:   is.Variant,
		Image:     is.Image,
	}
}

// Expectation validates the final state after all steps ran.
type Expectation struct {
	// Items is the expected collection, in order. An empty (non-nil)
	// list asserts the cart ended empty.
	Items []ExpectedItem `yaml:"items"`

	// Totals asserts the derived aggregates. Optional.
	Totals *ExpectedTotals `yaml:"totals,omitempty"`
}

// ExpectedItem matches one final line item by position.
type ExpectedItem struct {
	ID       string `yaml:"id"`
	Quantity int    `yaml:"quantity"`

	// UnitPrice is checked only when set.
	UnitPrice *float64 `yaml:"unitPrice,omitempty"`
}

// ExpectedTotals matches the final aggregates exactly.
type ExpectedTotals struct {
	Amount   float64 `yaml:"amount"`
	Quantity int     `yaml:"quantity"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected (catches typos like "step:" vs "steps:"), and required
// fields are validated.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by filename so
// runs are deterministic.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and per-op step shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpAdd:
			if step.Item == nil {
				return fmt.Errorf("step %d: add requires an item", i+1)
			}
			if step.Item.ID == "" {
				return fmt.Errorf("step %d: add item requires an id", i+1)
			}
		case OpRemove, OpIncrease, OpDecrease:
			if step.ID == "" {
				return fmt.Errorf("step %d: %s requires an id", i+1, step.Op)
			}
		case OpClear, OpOpen, OpClose, OpRefresh:
			// No arguments.
		default:
			return fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
	}
	return nil
}
