package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/trajcon/internal/engine"
	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Constraint string
	Samples    string
	Database   string
}

// SamplesFile is the YAML layout read by eval.
type SamplesFile struct {
	Samples []ir.Sample `yaml:"samples"`
}

// EvalResult summarizes a recorded run.
type EvalResult struct {
	Run         ir.Run             `json:"run"`
	Evaluations int                `json:"evaluations"`
	Outcomes    map[ir.Outcome]int `json:"outcomes"`
	Database    string             `json:"database"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <specs>",
		Short: "Evaluate a constraint over samples and record the run",
		Long: `Evaluate a constraint over every sample in a YAML file and record the
answers as one run in the database.

The samples file lists poses with curvature and velocity:

  samples:
    - {x: 1, y: 2, heading: 0, curvature: 0.1, velocity: 1.5}

Sequence numbers continue from the highest seq already in the database,
so runs recorded into the same database never overlap.

Examples:
  trajcon eval ./specs --constraint slowZone --samples path.yaml
  trajcon eval ./specs --constraint slowZone --samples path.yaml --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Constraint, "constraint", "c", "", "constraint name (required)")
	_ = cmd.MarkFlagRequired("constraint")
	cmd.Flags().StringVar(&opts.Samples, "samples", "", "YAML samples file (required)")
	_ = cmd.MarkFlagRequired("samples")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runEval(opts *EvalOptions, specsPath string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	samples, err := readSamples(opts.Samples)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSamples, err.Error(), nil)
	}

	built, err := buildConstraint(formatter, specsPath, opts.Constraint)
	if err != nil {
		return err
	}

	dbPath := opts.databasePath(opts.Database)
	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	seq, err := st.LatestSeq(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	eval := engine.New(built.Constraint, built.Name, built.SpecHash,
		engine.WithStore(st),
		engine.WithClock(engine.NewClockAt(seq)),
		engine.WithLogger(opts.logger()),
	)

	run, evals, err := eval.Evaluate(ctx, samples)
	if err != nil {
		var re *engine.RuntimeError
		if errors.As(err, &re) {
			return formatter.Fail(ExitCommandError, string(re.Code), re.Message, nil)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result := EvalResult{
		Run:         run,
		Evaluations: len(evals),
		Outcomes:    engine.CountOutcomes(evals),
		Database:    dbPath,
	}

	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Recorded run %s\n", run.ID)
	fmt.Fprintf(w, "  constraint:  %s\n", run.Constraint)
	fmt.Fprintf(w, "  evaluations: %d (seq %d..%d)\n", len(evals), run.Seq+1, run.Seq+int64(len(evals)))
	fmt.Fprintf(w, "  outcomes:    %d delegated, %d gated, %d direct\n",
		result.Outcomes[ir.OutcomeDelegated], result.Outcomes[ir.OutcomeGated], result.Outcomes[ir.OutcomeDirect])
	fmt.Fprintf(w, "  database:    %s\n", dbPath)
	return nil
}

// readSamples parses a samples file, rejecting unknown fields.
func readSamples(path string) ([]ir.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read samples file: %w", err)
	}

	var file SamplesFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse samples file: %w", err)
	}
	if len(file.Samples) == 0 {
		return nil, fmt.Errorf("samples file %s lists no samples", path)
	}
	return file.Samples, nil
}
