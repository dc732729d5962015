package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/trajcon/internal/compiler"
	"github.com/roach88/trajcon/internal/constraint"
)

// Error codes for CLI failures outside the compiler's E001-E199 range.
const (
	ErrCodeUnknownConstraint = "E201" // --constraint names nothing in the specs
	ErrCodeInvalidSpecs      = "E202" // specs failed validation
	ErrCodeDatabase          = "E210" // database open/read/write failed
	ErrCodeSamples           = "E211" // samples file unreadable or malformed
	ErrCodeNoRuns            = "E212" // database holds no runs
	ErrCodeScenarios         = "E220" // scenario path missing or unreadable
)

// loadSpecs loads constraint specs from a directory or a single .cue file.
func loadSpecs(path string, mode compiler.LoadMode) (*compiler.LoadResult, []error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return compiler.LoadDir(path, mode)
	}
	return compiler.LoadFiles([]string{path}, mode)
}

// builtConstraint is a named constraint ready for evaluation.
type builtConstraint struct {
	Name       string
	SpecHash   string
	Constraint constraint.Constraint
	FileCount  int
}

// buildConstraint loads specs, rejects them if validation reports errors,
// and builds the named constraint. Failures are reported through f.
func buildConstraint(f *OutputFormatter, specsPath, name string) (*builtConstraint, error) {
	built, err := buildConstraints(f, specsPath, []string{name})
	if err != nil {
		return nil, err
	}
	return built[0], nil
}

// buildConstraints is buildConstraint for several names sharing one load.
func buildConstraints(f *OutputFormatter, specsPath string, names []string) ([]*builtConstraint, error) {
	loaded, loadErrs := loadSpecs(specsPath, compiler.LoadModeFailFast)
	if len(loadErrs) > 0 {
		code, message := describeLoadError(loadErrs[0])
		return nil, f.Fail(ExitCommandError, code, message, nil)
	}

	var findings []compiler.ValidationError
	for _, v := range compiler.ValidateAll(loaded.Constraints) {
		if !v.IsWarning() {
			findings = append(findings, v)
		}
	}
	if len(findings) > 0 {
		return nil, f.Fail(ExitCommandError, ErrCodeInvalidSpecs,
			fmt.Sprintf("specs have %d validation error(s), run validate for details", len(findings)), findings)
	}

	built := make([]*builtConstraint, 0, len(names))
	for _, name := range names {
		if _, ok := loaded.Lookup(name); !ok {
			return nil, f.Fail(ExitCommandError, ErrCodeUnknownConstraint,
				fmt.Sprintf("constraint %q not found (have %v)", name, loaded.Names()), nil)
		}

		c, hash, err := compiler.BuildWithHash(loaded.Constraints, name)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeInvalidSpecs, err.Error(), nil)
		}

		f.VerboseLog("Built %s from %d CUE file(s) (spec hash %s)", name, loaded.FileCount, hash)
		built = append(built, &builtConstraint{Name: name, SpecHash: hash, Constraint: c, FileCount: loaded.FileCount})
	}
	return built, nil
}

// describeLoadError extracts an error code and message from a load error.
func describeLoadError(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}
