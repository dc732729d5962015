package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/trajcon/internal/compiler"
	"github.com/roach88/trajcon/internal/engine"
	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/queryir"
	"github.com/roach88/trajcon/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	RunID     string // optional - defaults to the latest run
	Outcome   string // optional - filter to one outcome
	Unbounded string // optional - only evaluations where this limit is unbounded
	Below     float64
	HasBelow  bool // --below was given; bounded max_velocity strictly under Below
	Limit     int
}

// TraceResult holds the recorded evaluations of one run.
type TraceResult struct {
	Run         ir.Run          `json:"run"`
	Evaluations []ir.Evaluation `json:"evaluations"`
	Stats       TraceStats      `json:"stats"`
}

// TraceStats holds summary statistics for the listed evaluations.
type TraceStats struct {
	Shown    int                `json:"shown"`
	Outcomes map[ir.Outcome]int `json:"outcomes"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded evaluations of a run",
		Long: `Show the evaluations recorded for a run, in seq order.

Filters narrow the listing: --outcome keeps one outcome (delegated, gated
or direct), --unbounded keeps evaluations whose max_velocity,
min_acceleration or max_acceleration is unbounded, and --below keeps
evaluations whose max_velocity is bounded and under the given value.

Examples:
  trajcon trace --db runs.db
  trajcon trace --db runs.db --run 0190a5c4-... --outcome gated
  trajcon trace --db runs.db --unbounded max_velocity --format json
  trajcon trace --db runs.db --below 2.5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.HasBelow = cmd.Flags().Changed("below")
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only show this outcome")
	cmd.Flags().StringVar(&opts.Unbounded, "unbounded", "", "only show evaluations where this limit is unbounded")
	cmd.Flags().Float64Var(&opts.Below, "below", 0, "only show evaluations with max_velocity under this value")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum evaluations to show (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Outcome != "" && !ir.ValidOutcomes[ir.Outcome(opts.Outcome)] {
		return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric,
			fmt.Sprintf("invalid outcome %q: must be delegated, gated or direct", opts.Outcome), nil)
	}

	if opts.Unbounded != "" && !limitColumns[opts.Unbounded] {
		return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric,
			fmt.Sprintf("invalid --unbounded %q: must be max_velocity, min_acceleration or max_acceleration", opts.Unbounded), nil)
	}

	if opts.HasBelow && (math.IsNaN(opts.Below) || math.IsInf(opts.Below, 0)) {
		return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric,
			fmt.Sprintf("invalid --below %g: must be finite", opts.Below), nil)
	}

	st, dbPath, err := openExistingStore(opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	run, err := resolveRun(ctx, st, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		if opts.RunID == "" {
			return formatter.Fail(ExitCommandError, ErrCodeNoRuns, fmt.Sprintf("no runs recorded in %s", dbPath), nil)
		}
		return formatter.Fail(ExitCommandError, string(engine.ErrCodeRunNotFound), fmt.Sprintf("run %s not found", opts.RunID), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	evals, err := st.QueryEvaluations(ctx, traceFilter(run.ID, opts), opts.Limit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result := TraceResult{
		Run:         run,
		Evaluations: evals,
		Stats:       TraceStats{Shown: len(evals), Outcomes: engine.CountOutcomes(evals)},
	}

	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	return outputTraceText(formatter, result)
}

// limitColumns are the evaluation columns that store unbounded limits as NULL.
var limitColumns = map[string]bool{
	"max_velocity":     true,
	"min_acceleration": true,
	"max_acceleration": true,
}

// traceFilter builds the evaluation filter for a trace listing.
func traceFilter(runID string, opts *TraceOptions) queryir.Predicate {
	preds := []queryir.Predicate{queryir.Equals{Field: "run_id", Value: runID}}
	if opts.Outcome != "" {
		preds = append(preds, queryir.Equals{Field: "outcome", Value: opts.Outcome})
	}
	if opts.Unbounded != "" {
		preds = append(preds, queryir.IsNull{Field: opts.Unbounded})
	}
	// NULL never compares, so unbounded rows drop out here.
	if opts.HasBelow {
		preds = append(preds, queryir.Compare{Field: "max_velocity", Op: queryir.OpLess, Value: opts.Below})
	}
	return queryir.Conj(preds...)
}

// openExistingStore opens the database without creating it.
func openExistingStore(opts *RootOptions, flag string) (*store.Store, string, error) {
	path := opts.databasePath(flag)
	if _, err := os.Stat(path); err != nil {
		return nil, path, fmt.Errorf("database not found: %s", path)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to open database: %w", err)
	}
	return st, path, nil
}

// resolveRun reads runID, or the latest run when runID is empty.
func resolveRun(ctx context.Context, st *store.Store, runID string) (ir.Run, error) {
	if runID == "" {
		return st.LatestRun(ctx)
	}
	return st.ReadRun(ctx, runID)
}

// outputTraceText outputs the trace as a table.
func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	w := formatter.Writer
	run := result.Run

	fmt.Fprintf(w, "Run %s: %s (seq %d)\n", run.ID, run.Constraint, run.Seq)
	formatter.VerboseLog("spec hash %s, engine %s, ir %s", run.SpecHash, run.EngineVersion, run.IRVersion)
	fmt.Fprintln(w)

	if len(result.Evaluations) == 0 {
		fmt.Fprintln(w, "No evaluations match.")
		return nil
	}

	fmt.Fprintf(w, "%6s  %10s %10s %8s  %-9s  %-9s %10s %10s %10s\n",
		"SEQ", "X", "Y", "HEADING", "IN_REGION", "OUTCOME", "MAX_VEL", "MIN_ACC", "MAX_ACC")
	for _, ev := range result.Evaluations {
		fmt.Fprintf(w, "%6d  %10g %10g %8g  %-9s  %-9s %10s %10s %10s\n",
			ev.Seq, ev.Sample.X, ev.Sample.Y, ev.Sample.Heading,
			ir.FormatInRegion(ev.InRegion), ev.Outcome,
			ev.MaxVelocity, ev.MinAcceleration, ev.MaxAcceleration)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d evaluation(s)", result.Stats.Shown)
	outcomes := make([]string, 0, len(result.Stats.Outcomes))
	for o := range result.Stats.Outcomes {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		fmt.Fprintf(w, ", %d %s", result.Stats.Outcomes[ir.Outcome(o)], o)
	}
	fmt.Fprintln(w)
	return nil
}
