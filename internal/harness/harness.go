package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/trajcon/internal/compiler"
	"github.com/roach88/trajcon/internal/engine"
	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/store"
	"github.com/roach88/trajcon/internal/testutil"
)

// floatTolerance is the absolute tolerance for finite expected limits.
const floatTolerance = 1e-9

// Option configures Run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger routes harness and engine logs to l. By default logs are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh in-memory store
//  2. Load, validate and build the scenario's constraint
//  3. Evaluate every step as one recorded run
//  4. Read the run back and check step expectations
//  5. Evaluate assertions
//
// An error is returned when the scenario cannot be executed at all (bad
// specs, unknown constraint, store failure). Failed expectations are reported
// in Result.Errors instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	loaded, errs := compiler.LoadFiles(scenario.Specs, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errs[0])
	}
	for _, f := range compiler.ValidateAll(loaded.Constraints) {
		if !f.IsWarning() {
			return nil, fmt.Errorf("invalid specs: %w", f)
		}
	}

	c, specHash, err := compiler.BuildWithHash(loaded.Constraints, scenario.Constraint)
	if err != nil {
		return nil, fmt.Errorf("failed to build constraint: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eval := engine.New(c, scenario.Constraint, specHash,
		engine.WithStore(st),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		engine.WithLogger(o.logger),
	)

	samples := make([]ir.Sample, len(scenario.Steps))
	for i, step := range scenario.Steps {
		samples[i] = step.Sample
	}

	ctx := context.Background()
	run, _, err := eval.Evaluate(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate steps: %w", err)
	}

	trace, err := st.ReadEvaluations(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	result := NewResult()
	result.Run = run
	result.Trace = trace

	for i, step := range scenario.Steps {
		if step.Expect == nil {
			continue
		}
		for _, msg := range checkExpect(trace[i], *step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d] (seq %d): %s", i, trace[i].Seq, msg))
		}
	}

	actx := &AssertionContext{Store: st, Ctx: ctx, RunID: run.ID}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	o.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"constraint", scenario.Constraint,
		"steps", len(trace),
		"pass", result.Pass)

	return result, nil
}

// checkExpect compares one evaluation against its expectation.
func checkExpect(got ir.Evaluation, want Expect) []string {
	var msgs []string

	if want.InRegion != nil {
		switch {
		case got.InRegion == nil:
			msgs = append(msgs, fmt.Sprintf("in_region: expected %t, constraint is not a region gate", *want.InRegion))
		case *got.InRegion != *want.InRegion:
			msgs = append(msgs, fmt.Sprintf("in_region: expected %t, got %t", *want.InRegion, *got.InRegion))
		}
	}
	if want.Outcome != "" && string(got.Outcome) != want.Outcome {
		msgs = append(msgs, fmt.Sprintf("outcome: expected %s, got %s", want.Outcome, got.Outcome))
	}

	for _, lim := range []struct {
		name string
		want *float64
		got  ir.Bound
	}{
		{"max_velocity", want.MaxVelocity, got.MaxVelocity},
		{"min_acceleration", want.MinAcceleration, got.MinAcceleration},
		{"max_acceleration", want.MaxAcceleration, got.MaxAcceleration},
	} {
		if lim.want != nil && !boundEqual(*lim.want, float64(lim.got)) {
			msgs = append(msgs, fmt.Sprintf("%s: expected %s, got %s", lim.name, ir.Bound(*lim.want), lim.got))
		}
	}

	return msgs
}

// boundEqual compares infinities exactly and finite values within
// floatTolerance.
func boundEqual(want, got float64) bool {
	if math.IsInf(want, 0) || math.IsInf(got, 0) {
		return want == got
	}
	return math.Abs(want-got) <= floatTolerance
}
