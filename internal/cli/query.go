package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/trajcon/internal/constraint"
	"github.com/roach88/trajcon/internal/engine"
	"github.com/roach88/trajcon/internal/geometry"
	"github.com/roach88/trajcon/internal/ir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Constraints []string
	Sample      ir.Sample
}

// QuerySample echoes the queried state. Flags accept NaN and Inf, so the
// fields use the Bound encoding.
type QuerySample struct {
	X         ir.Bound `json:"x"`
	Y         ir.Bound `json:"y"`
	Heading   ir.Bound `json:"heading"`
	Curvature ir.Bound `json:"curvature"`
	Velocity  ir.Bound `json:"velocity"`
}

// QueryResult is one constraint's answer. Region and InRegion are set only
// when the constraint is a region gate.
type QueryResult struct {
	Constraint      string              `json:"constraint"`
	Region          *geometry.Rectangle `json:"region,omitempty"`
	InRegion        *bool               `json:"in_region,omitempty"`
	Outcome         ir.Outcome          `json:"outcome"`
	MaxVelocity     ir.Bound            `json:"max_velocity"`
	MinAcceleration ir.Bound            `json:"min_acceleration"`
	MaxAcceleration ir.Bound            `json:"max_acceleration"`
}

// QueryReport answers one sample against each requested constraint.
// Combined is set when more than one constraint was queried.
type QueryReport struct {
	Sample   QuerySample    `json:"sample"`
	Results  []QueryResult  `json:"results"`
	Combined *engine.Limits `json:"combined,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <specs>",
		Short: "Query constraints at a single pose",
		Long: `Query one or more constraints at one pose without recording anything.

Prints whether the pose is inside each constraint's region (for region
gates), the maximum velocity and the acceleration window. Unbounded limits
print as +Inf and -Inf.

With several --constraint flags the answers are also combined: the lowest
max velocity and the intersection of the acceleration windows. An empty
intersection is reported as infeasible.

Examples:
  trajcon query ./specs --constraint slowZone --x 5 --y 5
  trajcon query ./specs --constraint turns --x 1 --y 1 --curvature 0.5 --format json
  trajcon query ./specs -c slowZone -c turns --x 5 --y 5 --curvature 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Constraints, "constraint", "c", nil, "constraint name, repeatable (required)")
	_ = cmd.MarkFlagRequired("constraint")
	cmd.Flags().Float64Var(&opts.Sample.X, "x", 0, "pose x in metres")
	cmd.Flags().Float64Var(&opts.Sample.Y, "y", 0, "pose y in metres")
	cmd.Flags().Float64Var(&opts.Sample.Heading, "heading", 0, "pose heading in radians")
	cmd.Flags().Float64Var(&opts.Sample.Curvature, "curvature", 0, "path curvature in 1/m")
	cmd.Flags().Float64Var(&opts.Sample.Velocity, "velocity", 0, "velocity in m/s")

	return cmd
}

func runQuery(opts *QueryOptions, specsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	built, err := buildConstraints(formatter, specsPath, opts.Constraints)
	if err != nil {
		return err
	}

	s := opts.Sample
	report := QueryReport{
		Sample: QuerySample{
			X:         ir.Bound(s.X),
			Y:         ir.Bound(s.Y),
			Heading:   ir.Bound(s.Heading),
			Curvature: ir.Bound(s.Curvature),
			Velocity:  ir.Bound(s.Velocity),
		},
		Results: make([]QueryResult, 0, len(built)),
	}

	constraints := make([]constraint.Constraint, 0, len(built))
	for _, b := range built {
		ev := engine.New(b.Constraint, b.Name, b.SpecHash, engine.WithLogger(opts.logger())).Query(s)
		result := QueryResult{
			Constraint:      b.Name,
			InRegion:        ev.InRegion,
			Outcome:         ev.Outcome,
			MaxVelocity:     ev.MaxVelocity,
			MinAcceleration: ev.MinAcceleration,
			MaxAcceleration: ev.MaxAcceleration,
		}
		if gate, ok := b.Constraint.(*constraint.RectangularRegion); ok {
			region := gate.Region()
			result.Region = &region
		}
		report.Results = append(report.Results, result)
		constraints = append(constraints, b.Constraint)
	}

	if len(built) > 1 {
		limits := engine.Combine(constraints, s)
		report.Combined = &limits
		if !limits.Feasible {
			formatter.VerboseLog("acceleration windows of %s do not overlap", strings.Join(opts.Constraints, ", "))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return outputQueryText(formatter, report, opts.Constraints)
}

// outputQueryText prints one block per constraint and the combined limits.
func outputQueryText(formatter *OutputFormatter, report QueryReport, names []string) error {
	w := formatter.Writer
	s := report.Sample

	for _, r := range report.Results {
		fmt.Fprintf(w, "%s at (%s, %s) heading %s rad\n", r.Constraint, s.X, s.Y, s.Heading)
		if r.Region != nil {
			fmt.Fprintf(w, "  region:           %s\n", describeRectangle(*r.Region))
		}
		fmt.Fprintf(w, "  in_region:        %s\n", ir.FormatInRegion(r.InRegion))
		fmt.Fprintf(w, "  outcome:          %s\n", r.Outcome)
		fmt.Fprintf(w, "  max_velocity:     %s\n", r.MaxVelocity)
		fmt.Fprintf(w, "  min_acceleration: %s\n", r.MinAcceleration)
		fmt.Fprintf(w, "  max_acceleration: %s\n", r.MaxAcceleration)
	}

	if c := report.Combined; c != nil {
		fmt.Fprintf(w, "combined (%s)\n", strings.Join(names, ", "))
		fmt.Fprintf(w, "  max_velocity:     %s\n", c.MaxVelocity)
		switch {
		case c.Unconstrained:
			fmt.Fprintln(w, "  acceleration:     unconstrained")
		case !c.Feasible:
			fmt.Fprintf(w, "  acceleration:     infeasible (min %s > max %s)\n", c.MinAcceleration, c.MaxAcceleration)
		default:
			fmt.Fprintf(w, "  min_acceleration: %s\n", c.MinAcceleration)
			fmt.Fprintf(w, "  max_acceleration: %s\n", c.MaxAcceleration)
		}
	}
	return nil
}

func describeRectangle(r geometry.Rectangle) string {
	return fmt.Sprintf("(%g, %g)..(%g, %g)", r.BottomLeft.X(), r.BottomLeft.Y(), r.TopRight.X(), r.TopRight.Y())
}
