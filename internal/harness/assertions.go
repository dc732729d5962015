package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/queryir"
	"github.com/roach88/trajcon/internal/store"
)

// AssertionContext gives assertions access to the recorded run.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	RunID string
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Outcomes []string // Outcome sequence for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Outcomes) > 0 {
		fmt.Fprintf(&buf, "  Outcomes: %s\n", strings.Join(e.Outcomes, ", "))
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var msgs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutcomeCount:
			err = assertOutcomeCount(result, a)
		case AssertOutcomeOrder:
			err = assertOutcomeOrder(result, a)
		case AssertUnboundedCount:
			err = assertUnboundedCount(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

// assertOutcomeCount checks that exactly a.Count evaluations have a.Outcome.
func assertOutcomeCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Trace {
		if ev.Outcome == ir.Outcome(a.Outcome) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d %s evaluations", a.Count, a.Outcome),
			Actual:   fmt.Sprintf("%d", count),
			Outcomes: result.Outcomes(),
		}
	}
	return nil
}

// assertOutcomeOrder checks the outcome of every step, in order.
func assertOutcomeOrder(result *Result, a Assertion) error {
	got := result.Outcomes()
	if len(got) != len(a.Outcomes) {
		return &AssertionError{
			Type:     AssertOutcomeOrder,
			Expected: fmt.Sprintf("%d outcomes", len(a.Outcomes)),
			Actual:   fmt.Sprintf("%d outcomes", len(got)),
			Outcomes: got,
		}
	}
	for i := range got {
		if got[i] != a.Outcomes[i] {
			return &AssertionError{
				Type:     AssertOutcomeOrder,
				Expected: fmt.Sprintf("step %d %s", i, a.Outcomes[i]),
				Actual:   fmt.Sprintf("step %d %s", i, got[i]),
				Outcomes: got,
			}
		}
	}
	return nil
}

// assertUnboundedCount queries the store for evaluations of the run whose
// a.Field is unbounded (stored as NULL).
func assertUnboundedCount(actx *AssertionContext, a Assertion) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("%s requires a store", AssertUnboundedCount)
	}
	evals, err := actx.Store.QueryEvaluations(actx.Ctx, queryir.Conj(
		queryir.Equals{Field: "run_id", Value: actx.RunID},
		queryir.IsNull{Field: a.Field},
	), 0)
	if err != nil {
		return fmt.Errorf("%s: %w", AssertUnboundedCount, err)
	}
	if len(evals) != a.Count {
		return &AssertionError{
			Type:     AssertUnboundedCount,
			Expected: fmt.Sprintf("%d evaluations with unbounded %s", a.Count, a.Field),
			Actual:   fmt.Sprintf("%d", len(evals)),
		}
	}
	return nil
}
