package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/trajcon/internal/compiler"
	"github.com/roach88/trajcon/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled constraint specs.
type CompilationResult struct {
	Constraints []ir.ConstraintSpec `json:"constraints"`
	Hashes      map[string]string   `json:"hashes"` // spec name -> ir.SpecHash
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs>",
		Short: "Compile CUE constraint specs to canonical IR",
		Long: `Compile CUE constraint specs to canonical IR.

<specs> is a directory of .cue files or a single .cue file. Every
constraint is compiled and listed with its content hash; --output writes
the IR as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, loadErrs := loadSpecs(specsPath, compiler.LoadModeCollectAll)
	if loaded == nil && len(loadErrs) > 0 {
		code, message := describeLoadError(loadErrs[0])
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsPath)
	for _, spec := range loaded.Constraints {
		formatter.VerboseLog("Compiled constraint: %s", spec.Name)
	}

	if len(loadErrs) > 0 {
		return outputCompileErrors(formatter, loadErrs)
	}

	result := &CompilationResult{
		Constraints: loaded.Constraints,
		Hashes:      make(map[string]string, len(loaded.Constraints)),
	}
	for _, spec := range loaded.Constraints {
		hash, err := ir.SpecHash(spec)
		if err != nil {
			return formatter.Fail(ExitCommandError, compiler.ErrCodeGeneric,
				fmt.Sprintf("hashing %s: %v", spec.Name, err), nil)
		}
		result.Hashes[spec.Name] = hash
	}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, compiler.ErrCodeWriteFailed,
				fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d constraint(s)\n\n", len(result.Constraints))
	for _, spec := range result.Constraints {
		fmt.Fprintf(w, "  %s: %s %s\n", spec.Name, describeNode(spec.Root), shortHash(result.Hashes[spec.Name]))
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote canonical IR to %s\n", outputFile)
	}
	return nil
}

// describeNode renders a constraint tree on one line.
func describeNode(n ir.Node) string {
	switch n.Kind {
	case ir.KindRectangularRegion:
		inner := "?"
		if n.Inner != nil {
			inner = describeNode(*n.Inner)
		}
		return fmt.Sprintf("region[%s..%s](%s)", describePoint(n.BottomLeft), describePoint(n.TopRight), inner)
	case ir.KindRef:
		return "ref(" + n.Ref + ")"
	default:
		return n.Kind
	}
}

func describePoint(p *ir.Point) string {
	if p == nil {
		return "?"
	}
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := describeLoadError(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for i, err := range errs {
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", cliErrors[i].Code, cliErrors[i].Message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeIRToFile writes the compilation result to a file as indented JSON.
// Canonical JSON without indentation is used only for hashing.
func writeIRToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
