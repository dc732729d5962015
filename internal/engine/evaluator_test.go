package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/constraint"
	"github.com/roach88/trajcon/internal/geometry"
	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/store"
	"github.com/roach88/trajcon/internal/testutil"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// slowZone caps velocity at 3 inside (0,0)-(10,10).
func slowZone() constraint.Constraint {
	return constraint.NewRectangularRegion(
		geometry.NewTranslation2d(0, 0),
		geometry.NewTranslation2d(10, 10),
		constraint.MaxVelocity{Limit: 3},
	)
}

func newTestEvaluator(t *testing.T, c constraint.Constraint, opts ...Option) (*Evaluator, *store.Store) {
	t.Helper()
	s := openTestStore(t)
	opts = append([]Option{
		WithStore(s),
		WithClock(testutil.NewDeterministicClock()),
		WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-1")),
	}, opts...)
	return New(c, "slowZone", "hash-1", opts...), s
}

func TestQuery_Gated(t *testing.T) {
	e := New(slowZone(), "slowZone", "hash-1")

	inside := e.Query(ir.Sample{X: 5, Y: 5, Velocity: 1})
	assert.Equal(t, ir.OutcomeDelegated, inside.Outcome)
	assert.Equal(t, ir.Bool(true), inside.InRegion)
	assert.Equal(t, ir.Bound(3), inside.MaxVelocity)
	assert.True(t, inside.MinAcceleration.Infinite())
	assert.True(t, inside.MaxAcceleration.Infinite())

	outside := e.Query(ir.Sample{X: 15, Y: 5})
	assert.Equal(t, ir.OutcomeGated, outside.Outcome)
	assert.Equal(t, ir.Bool(false), outside.InRegion)
	assert.True(t, math.IsInf(float64(outside.MaxVelocity), 1))

	edge := e.Query(ir.Sample{X: 10, Y: 0})
	assert.Equal(t, ir.OutcomeDelegated, edge.Outcome)
}

func TestQuery_Direct(t *testing.T) {
	e := New(constraint.AccelerationLimit{Min: -2, Max: 2}, "accel", "")

	ev := e.Query(ir.Sample{X: 100, Y: -100})
	assert.Equal(t, ir.OutcomeDirect, ev.Outcome)
	assert.Nil(t, ev.InRegion)
	assert.True(t, math.IsInf(float64(ev.MaxVelocity), 1))
	assert.Equal(t, ir.Bound(-2), ev.MinAcceleration)
	assert.Equal(t, ir.Bound(2), ev.MaxAcceleration)
}

func TestQuery_NaNPoseIsOutside(t *testing.T) {
	e := New(slowZone(), "slowZone", "")

	ev := e.Query(ir.Sample{X: math.NaN(), Y: 5})
	assert.Equal(t, ir.OutcomeGated, ev.Outcome)
	assert.True(t, math.IsInf(float64(ev.MaxVelocity), 1))
}

// poseRecorder remembers the pose of the last velocity query.
type poseRecorder struct {
	pose geometry.Pose2d
}

func (r *poseRecorder) MaxVelocity(pose geometry.Pose2d, _, _ float64) float64 {
	r.pose = pose
	return 1
}

func (r *poseRecorder) MinMaxAcceleration(geometry.Pose2d, float64, float64) constraint.MinMax {
	return constraint.Unconstrained()
}

func TestQuery_HeadingPassedThrough(t *testing.T) {
	var rec poseRecorder
	New(&rec, "heading", "").Query(ir.Sample{X: 1, Y: 2, Heading: math.Pi})
	assert.Equal(t, geometry.NewPose2d(1, 2, geometry.NewRotation2d(math.Pi)), rec.pose)
}

func TestEvaluate_RecordsRun(t *testing.T) {
	e, s := newTestEvaluator(t, slowZone())
	ctx := context.Background()

	samples := []ir.Sample{
		{X: 5, Y: 5, Velocity: 2},
		{X: 15, Y: 5, Velocity: 2},
		{X: 0, Y: 10, Velocity: 2},
	}
	run, evals, err := e.Evaluate(ctx, samples)
	require.NoError(t, err)

	assert.Equal(t, ir.Run{
		ID:            "run-1",
		Constraint:    "slowZone",
		SpecHash:      "hash-1",
		Seq:           1,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, run)

	require.Len(t, evals, 3)
	for i, ev := range evals {
		assert.Equal(t, "run-1", ev.RunID)
		assert.Equal(t, int64(i+2), ev.Seq)
		assert.Equal(t, samples[i], ev.Sample)
	}
	assert.Equal(t, []ir.Outcome{ir.OutcomeDelegated, ir.OutcomeGated, ir.OutcomeDelegated},
		[]ir.Outcome{evals[0].Outcome, evals[1].Outcome, evals[2].Outcome})

	stored, err := s.ReadEvaluations(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, evals, stored)

	assert.Equal(t, map[ir.Outcome]int{ir.OutcomeDelegated: 2, ir.OutcomeGated: 1}, CountOutcomes(evals))
}

func TestEvaluate_SeqContinuesAcrossRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := New(slowZone(), "slowZone", "h", WithStore(s), WithRunIDGenerator(NewFixedGenerator("a")))
	_, _, err := first.Evaluate(ctx, []ir.Sample{{X: 1, Y: 1}, {X: 2, Y: 2}})
	require.NoError(t, err)

	latest, err := s.LatestSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest)

	second := New(slowZone(), "slowZone", "h",
		WithStore(s),
		WithClock(NewClockAt(latest)),
		WithRunIDGenerator(NewFixedGenerator("b")))
	run, evals, err := second.Evaluate(ctx, []ir.Sample{{X: 3, Y: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), run.Seq)
	assert.Equal(t, int64(5), evals[0].Seq)
}

func TestEvaluate_EmptySamples(t *testing.T) {
	e, s := newTestEvaluator(t, slowZone())

	run, evals, err := e.Evaluate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, evals)

	_, err = s.ReadRun(context.Background(), run.ID)
	assert.NoError(t, err)
}

func TestEvaluate_RejectsNonFiniteSample(t *testing.T) {
	e, s := newTestEvaluator(t, slowZone())

	_, _, err := e.Evaluate(context.Background(), []ir.Sample{
		{X: 1, Y: 1},
		{X: 1, Y: 1, Curvature: math.Inf(1)},
	})
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeInvalidSample))
	assert.Contains(t, err.Error(), "sample 1 has non-finite curvature")

	runs, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, runs)

	// The rejected run took no seq: the next run starts where a fresh
	// evaluator would.
	run, evals, err := e.Evaluate(context.Background(), []ir.Sample{{X: 1, Y: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), run.Seq)
	require.Len(t, evals, 1)
	assert.Equal(t, int64(2), evals[0].Seq)
}

func TestEvaluate_NoStore(t *testing.T) {
	_, _, err := New(slowZone(), "slowZone", "").Evaluate(context.Background(), nil)
	assert.True(t, HasCode(err, ErrCodeNoStore))
}

func TestEvaluate_CancelledContext(t *testing.T) {
	e, _ := newTestEvaluator(t, slowZone())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Evaluate(ctx, []ir.Sample{{X: 1, Y: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_Deterministic(t *testing.T) {
	samples := []ir.Sample{{X: 5, Y: 5}, {X: 50, Y: 5}, {X: 10, Y: 10, Curvature: 1}}

	e1, _ := newTestEvaluator(t, slowZone())
	_, first, err := e1.Evaluate(context.Background(), samples)
	require.NoError(t, err)

	e2, _ := newTestEvaluator(t, slowZone())
	_, second, err := e2.Evaluate(context.Background(), samples)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
