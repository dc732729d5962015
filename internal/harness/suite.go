package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrGoldenMismatch is returned when a trace differs from its golden file.
var ErrGoldenMismatch = errors.New("trace does not match golden file")

// ScenarioNotFoundError is returned when a scenario path does not exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	// Filter is a glob matched against scenario file names without extension.
	Filter string

	// Golden compares each trace against golden/{name}.golden next to the
	// scenario file. Scenarios without a golden file are checked by
	// expectations and assertions only.
	Golden bool

	// Update rewrites golden files instead of comparing. Implies Golden.
	Update bool
}

// SuiteResult summarizes a batch of scenario runs.
type SuiteResult struct {
	Scenarios []ScenarioStatus `json:"scenarios"`
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
}

// ScenarioStatus records the outcome of one scenario file.
type ScenarioStatus struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Pass          bool     `json:"pass"`
	GoldenUpdated bool     `json:"golden_updated,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// Failures returns the scenarios that did not pass.
func (r *SuiteResult) Failures() []ScenarioStatus {
	var out []ScenarioStatus
	for _, s := range r.Scenarios {
		if !s.Pass {
			out = append(out, s)
		}
	}
	return out
}

// FindScenarios returns the .yaml and .yml files under path, sorted. A
// file path is returned as is. Golden directories are skipped.
func FindScenarios(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(p)
		if e := strings.ToLower(ext); e != ".yaml" && e != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// RunSuite loads and runs every scenario at path. A scenario that fails to
// load or execute counts as failed; RunSuite itself only errors when path
// cannot be scanned.
func RunSuite(path string, sopts SuiteOptions, opts ...Option) (*SuiteResult, error) {
	files, err := FindScenarios(path, sopts.Filter)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{Scenarios: make([]ScenarioStatus, 0, len(files))}
	for _, file := range files {
		status := runScenarioFile(file, sopts, opts)
		result.Scenarios = append(result.Scenarios, status)
		result.Total++
		if status.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

func runScenarioFile(file string, sopts SuiteOptions, opts []Option) ScenarioStatus {
	status := ScenarioStatus{Name: filepath.Base(file), Path: file}

	scenario, err := LoadScenario(file)
	if err != nil {
		status.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return status
	}
	status.Name = scenario.Name

	run, err := Run(scenario, opts...)
	if err != nil {
		status.Errors = []string{fmt.Sprintf("scenario execution failed: %v", err)}
		return status
	}
	status.Errors = run.Errors

	if sopts.Golden || sopts.Update {
		snap := NewTraceSnapshot(scenario.Name, run)
		updated, err := CheckGoldenFile(GoldenPath(file, scenario.Name), snap, sopts.Update)
		if err != nil {
			status.Errors = append(status.Errors, err.Error())
		}
		status.GoldenUpdated = updated
	}

	status.Pass = len(status.Errors) == 0
	return status
}

// GoldenPath returns the golden file of a scenario: golden/{name}.golden in
// the scenario file's directory.
func GoldenPath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// CheckGoldenFile compares snap with the golden file at path, or rewrites it
// when update is set. A missing golden file is not an error when comparing.
// It reports whether the file was written.
func CheckGoldenFile(path string, snap TraceSnapshot, update bool) (bool, error) {
	data, err := snap.MarshalCanonical()
	if err != nil {
		return false, fmt.Errorf("failed to marshal trace: %w", err)
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return false, fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return false, fmt.Errorf("failed to write golden file: %w", err)
		}
		return true, nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(bytes.TrimSpace(want), data) {
		return false, fmt.Errorf("%w (run with --update to regenerate)", ErrGoldenMismatch)
	}
	return false, nil
}
