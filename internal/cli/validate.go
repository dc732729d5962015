package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/trajcon/internal/compiler"
)

// ValidationResult holds validation results. Warnings never make specs
// invalid.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs>",
		Short: "Validate constraint specs",
		Long: `Validate CUE constraint specs without writing IR.

Reports every finding at once: unknown kinds (with suggestions), missing
or invalid limits, regions without an inner constraint, unresolved refs
and ref cycles. Inverted regions are reported as warnings only.

Exit codes:
  0 - Specs valid (warnings allowed)
  1 - Validation errors
  2 - Command error (specs not found, CUE syntax errors)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, loadErrs := loadSpecs(specsPath, compiler.LoadModeCollectAll)
	if loaded == nil && len(loadErrs) > 0 {
		code, message := describeLoadError(loadErrs[0])
		return formatter.Fail(ExitCommandError, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsPath)

	// Compile errors become findings so they are reported with the rest.
	var findings []compiler.ValidationError
	for _, err := range loadErrs {
		findings = append(findings, loadErrorFinding(err))
	}
	findings = append(findings, compiler.ValidateAll(loaded.Constraints)...)

	result := ValidationResult{Valid: true}
	for _, f := range findings {
		if f.IsWarning() {
			result.Warnings = append(result.Warnings, f)
			continue
		}
		result.Errors = append(result.Errors, f)
		result.Valid = false
	}

	return outputValidation(formatter, result)
}

// loadErrorFinding converts a load error into a validation finding.
func loadErrorFinding(err error) compiler.ValidationError {
	code, message := describeLoadError(err)
	finding := compiler.ValidationError{
		Field:    "load",
		Message:  message,
		Code:     code,
		Severity: compiler.SeverityError,
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		finding.Line = loadErr.Pos.Line()
	}
	return finding
}

// outputValidation outputs the findings and maps errors to exit code 1.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	var exitErr error
	if !result.Valid {
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	if result.Valid {
		fmt.Fprintln(w, "✓ All specs valid")
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
	}
	if len(result.Errors)+len(result.Warnings) > 0 {
		fmt.Fprintln(w)
	}
	for _, group := range [][]compiler.ValidationError{result.Errors, result.Warnings} {
		for _, f := range group {
			if f.Line > 0 {
				fmt.Fprintf(w, "line %d\n", f.Line)
			}
			fmt.Fprintf(w, "  %s %s: %s\n", f.Code, f.Field, f.Message)
		}
	}

	return exitErr
}
