package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/trajcon/internal/engine"
	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - defaults to the latest run
	All      bool   // replay every recorded run
}

// ReplaySummary holds the overall replay result.
type ReplaySummary struct {
	Runs         []*engine.ReplayResult `json:"runs"`
	TotalRuns    int                    `json:"total_runs"`
	AllIdentical bool                   `json:"all_identical"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <specs>",
		Short: "Re-evaluate recorded runs and verify the answers",
		Long: `Re-evaluate the samples of recorded runs against the current specs and
compare every answer with what was recorded.

Evaluation is deterministic, so a difference means the constraint changed
since the run was recorded. The report says whether the spec hash changed
too.

Exit codes:
  0 - All replayed answers match
  1 - One or more answers differ
  2 - Command error (database not found, unknown run, invalid specs)

Examples:
  trajcon replay ./specs --db runs.db
  trajcon replay ./specs --db runs.db --run 0190a5c4-...
  trajcon replay ./specs --db runs.db --all --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (default: latest run)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "replay every recorded run")
	cmd.MarkFlagsMutuallyExclusive("run", "all")

	return cmd
}

func runReplay(opts *ReplayOptions, specsPath string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, dbPath, err := openExistingStore(opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	runs, err := runsToReplay(ctx, st, opts)
	if errors.Is(err, sql.ErrNoRows) && opts.RunID != "" {
		return formatter.Fail(ExitCommandError, string(engine.ErrCodeRunNotFound), fmt.Sprintf("run %s not found", opts.RunID), nil)
	}
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(runs) == 0) {
		return formatter.Fail(ExitCommandError, ErrCodeNoRuns, fmt.Sprintf("no runs recorded in %s", dbPath), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	summary := ReplaySummary{
		Runs:         make([]*engine.ReplayResult, 0, len(runs)),
		TotalRuns:    len(runs),
		AllIdentical: true,
	}

	// Runs of the same constraint share one evaluator.
	evaluators := make(map[string]*engine.Evaluator)
	for _, run := range runs {
		eval, ok := evaluators[run.Constraint]
		if !ok {
			built, err := buildConstraint(formatter, specsPath, run.Constraint)
			if err != nil {
				return err
			}
			eval = engine.New(built.Constraint, built.Name, built.SpecHash,
				engine.WithStore(st),
				engine.WithLogger(opts.logger()),
			)
			evaluators[run.Constraint] = eval
		}

		result, err := eval.Replay(ctx, run.ID)
		if err != nil {
			var re *engine.RuntimeError
			if errors.As(err, &re) {
				return formatter.Fail(ExitCommandError, string(re.Code), re.Message, nil)
			}
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}

		summary.Runs = append(summary.Runs, result)
		if !result.Identical() {
			summary.AllIdentical = false
		}
	}

	if formatter.Format == "json" {
		return outputReplayJSON(formatter, summary)
	}
	return outputReplayText(formatter, summary)
}

// runsToReplay selects the runs named by the flags.
func runsToReplay(ctx context.Context, st *store.Store, opts *ReplayOptions) ([]ir.Run, error) {
	if opts.All {
		return st.ListRuns(ctx, "")
	}
	run, err := resolveRun(ctx, st, opts.RunID)
	if err != nil {
		return nil, err
	}
	return []ir.Run{run}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, summary ReplaySummary) error {
	response := CLIResponse{
		Status: "ok",
		Data:   summary,
	}
	if !summary.AllIdentical {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_REPLAY_MISMATCH",
			Message: "replayed answers differ from the recording",
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}
	if !summary.AllIdentical {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, summary ReplaySummary) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", summary.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range summary.Runs {
		status := "✓"
		if !run.Identical() {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Run: %s (%s)\n", status, run.RunID, run.Constraint)
		fmt.Fprintf(w, "  Checked: %d evaluation(s)\n", run.Checked)
		if run.SpecHashChanged {
			fmt.Fprintln(w, "  Spec hash changed since recording")
		}
		for _, m := range run.Mismatches {
			fmt.Fprintf(w, "  seq %d %s: recorded %s, replayed %s\n", m.Seq, m.Field, m.Recorded, m.Replayed)
		}
		fmt.Fprintln(w)
	}

	if summary.AllIdentical {
		fmt.Fprintln(w, "✓ All replayed answers match")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay verification failed")
	return NewExitError(ExitFailure, "replay verification failed")
}
