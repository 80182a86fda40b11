package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/marketbay/cartengine/internal/cart"
)

// goldenTrace is the serialized form compared against golden files.
type goldenTrace struct {
	Scenario string          `json:"scenario"`
	Trace    []TraceEvent    `json:"trace"`
	Items    []cart.LineItem `json:"items"`
	Totals   cart.Totals     `json:"totals"`
}

// RunWithGolden executes the scenario and compares its trace and final
// state against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation and invariant failures are reported through t; the
// returned error covers harness-level problems only.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	data, err := marshalGolden(goldenTrace{
		Scenario: scenario.Name,
		Trace:    result.Trace,
		Items:    result.Items,
		Totals:   result.Totals,
	})
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}

// marshalGolden produces byte-stable indented JSON. HTML escaping is
// disabled so titles with ampersands stay readable in fixtures.
func marshalGolden(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
