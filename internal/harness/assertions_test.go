package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/ir"
)

func resultWith(outcomes ...ir.Outcome) *Result {
	r := NewResult()
	for i, o := range outcomes {
		r.Trace = append(r.Trace, ir.Evaluation{Seq: int64(i + 1), Outcome: o})
	}
	return r
}

func TestEvaluateAssertions_OutcomeCount(t *testing.T) {
	r := resultWith(ir.OutcomeGated, ir.OutcomeDelegated, ir.OutcomeGated)

	msgs := EvaluateAssertions(r, []Assertion{
		{Type: AssertOutcomeCount, Outcome: "gated", Count: 2},
		{Type: AssertOutcomeCount, Outcome: "direct", Count: 0},
	}, nil)
	assert.Empty(t, msgs)

	msgs = EvaluateAssertions(r, []Assertion{
		{Type: AssertOutcomeCount, Outcome: "delegated", Count: 2},
	}, nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "assertions[0]: Assertion failed: outcome_count")
	assert.Contains(t, msgs[0], "Expected: 2 delegated evaluations")
	assert.Contains(t, msgs[0], "Actual: 1")
	assert.Contains(t, msgs[0], "Outcomes: gated, delegated, gated")
}

func TestEvaluateAssertions_OutcomeOrder(t *testing.T) {
	r := resultWith(ir.OutcomeDelegated, ir.OutcomeGated)

	assert.Empty(t, EvaluateAssertions(r, []Assertion{
		{Type: AssertOutcomeOrder, Outcomes: []string{"delegated", "gated"}},
	}, nil))

	msgs := EvaluateAssertions(r, []Assertion{
		{Type: AssertOutcomeOrder, Outcomes: []string{"delegated", "delegated"}},
	}, nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Expected: step 1 delegated")
	assert.Contains(t, msgs[0], "Actual: step 1 gated")

	msgs = EvaluateAssertions(r, []Assertion{
		{Type: AssertOutcomeOrder, Outcomes: []string{"delegated"}},
	}, nil)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Expected: 1 outcomes")
}

func TestEvaluateAssertions_UnboundedCountNeedsStore(t *testing.T) {
	msgs := EvaluateAssertions(resultWith(ir.OutcomeGated), []Assertion{
		{Type: AssertUnboundedCount, Field: "max_velocity", Count: 1},
	}, nil)
	assert.Equal(t, []string{"assertions[0]: unbounded_count requires a store"}, msgs)
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	msgs := EvaluateAssertions(NewResult(), []Assertion{{Type: "nope"}}, nil)
	assert.Equal(t, []string{`assertions[0]: unknown assertion type "nope"`}, msgs)
}

func TestAssertionError_Error(t *testing.T) {
	err := &AssertionError{Type: AssertOutcomeCount, Expected: "1", Actual: "0"}
	assert.Equal(t, "Assertion failed: outcome_count\n  Expected: 1\n  Actual: 0\n", err.Error())
}
