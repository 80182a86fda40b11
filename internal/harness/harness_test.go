package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestRun_MergeScenarioPasses(t *testing.T) {
	scenario := &Scenario{
		Name:        "merge",
		Description: "duplicate adds merge",
		Steps: []Step{
			{Op: OpAdd, Item: &ItemSpec{ID: "A", Title: "Alpha Tee", UnitPrice: 100}},
			{Op: OpAdd, Item: &ItemSpec{ID: "A", Title: "Alpha Tee", UnitPrice: 100}},
		},
		Expect: &Expectation{
			Items:  []ExpectedItem{{ID: "A", Quantity: 2, UnitPrice: floatPtr(100)}},
			Totals: &ExpectedTotals{Amount: 200, Quantity: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestRun_TraceRecordsOpsAndNotifications(t *testing.T) {
	scenario := &Scenario{
		Name:        "trace",
		Description: "trace shape",
		Steps: []Step{
			{Op: OpAdd, Item: &ItemSpec{ID: "A", Title: "Alpha Tee", UnitPrice: 100}},
			{Op: OpDecrease, ID: "A"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	// add op, its notification, and the no-op decrease; the decrease
	// at quantity 1 must not produce a notification.
	require.Len(t, result.Trace, 3)
	assert.Equal(t, "op", result.Trace[0].Type)
	assert.Equal(t, OpAdd, result.Trace[0].Op)
	assert.Equal(t, "notification", result.Trace[1].Type)
	assert.Equal(t, "item_added", result.Trace[1].Kind)
	assert.Equal(t, "evt-1", result.Trace[1].EventID)
	assert.Equal(t, "op", result.Trace[2].Type)
	assert.Equal(t, OpDecrease, result.Trace[2].Op)

	for i, ev := range result.Trace {
		assert.Equal(t, i+1, ev.Seq)
	}
}

func TestRun_ExpectationFailureIsReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "wrong expectation",
		Steps: []Step{
			{Op: OpAdd, Item: &ItemSpec{ID: "A", UnitPrice: 10}},
		},
		Expect: &Expectation{
			Items:  []ExpectedItem{{ID: "A", Quantity: 7}},
			Totals: &ExpectedTotals{Amount: 999, Quantity: 7},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err, "expectation failures are results, not errors")

	assert.False(t, result.Pass)
	assert.NotEmpty(t, result.Errors)
}

func TestRun_OpenCloseRefreshAreTraceOnly(t *testing.T) {
	scenario := &Scenario{
		Name:        "flags",
		Description: "visibility flag ops produce no notifications",
		Steps: []Step{
			{Op: OpOpen},
			{Op: OpClose},
			{Op: OpRefresh},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, result.Trace, 3)
	for _, ev := range result.Trace {
		assert.Equal(t, "op", ev.Type)
	}
	assert.True(t, result.Pass)
}

func TestRun_InvalidAddFailsTheRun(t *testing.T) {
	scenario := &Scenario{
		Name:        "invalid-add",
		Description: "zero price rejected by the engine",
		Steps: []Step{
			{Op: OpAdd, Item: &ItemSpec{ID: "A", UnitPrice: 0}},
		},
	}

	_, err := Run(scenario)
	assert.Error(t, err)
}

func TestRun_ShippedScenariosPass(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}
