package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/trajcon/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE spec files to load. They must share a package.
	Specs []string `yaml:"specs"`

	// Constraint is the name of the constraint under test.
	Constraint string `yaml:"constraint"`

	// RunID fixes the run id for golden comparison.
	// If empty, defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Steps are evaluated in order, each as one sample of the run.
	Steps []Step `yaml:"steps"`

	// Assertions validate the whole run after every step has executed.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one query sample with an optional expectation.
type Step struct {
	ir.Sample `yaml:",inline"`

	// Expect lists the answer fields to check. If nil, the step only
	// contributes to the trace.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect holds expected answer fields. Unset fields are not checked.
type Expect struct {
	InRegion        *bool    `yaml:"in_region,omitempty"`
	Outcome         string   `yaml:"outcome,omitempty"`
	MaxVelocity     *float64 `yaml:"max_velocity,omitempty"`
	MinAcceleration *float64 `yaml:"min_acceleration,omitempty"`
	MaxAcceleration *float64 `yaml:"max_acceleration,omitempty"`
}

// Assertion validates the recorded run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Outcome is the outcome to count (outcome_count).
	Outcome string `yaml:"outcome,omitempty"`

	// Outcomes is the expected outcome per step (outcome_order).
	Outcomes []string `yaml:"outcomes,omitempty"`

	// Field is the limit column to inspect (unbounded_count).
	Field string `yaml:"field,omitempty"`

	// Count is the expected number of matches (outcome_count, unbounded_count).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertOutcomeCount   = "outcome_count"
	AssertOutcomeOrder   = "outcome_order"
	AssertUnboundedCount = "unbounded_count"
)

// limitFields are the columns unbounded_count may inspect.
var limitFields = map[string]bool{
	"max_velocity":     true,
	"min_acceleration": true,
	"max_acceleration": true,
}

// LoadScenario reads and parses a scenario YAML file. Relative spec paths are
// resolved against the scenario file's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving relative spec paths against
// baseDir when it is non-empty.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && baseDir != "" {
			scenario.Specs[i] = filepath.Join(baseDir, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if s.Constraint == "" {
		return fmt.Errorf("constraint is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if step.Expect != nil && step.Expect.Outcome != "" && !ir.ValidOutcomes[ir.Outcome(step.Expect.Outcome)] {
			return fmt.Errorf("steps[%d].expect: unknown outcome %q", i, step.Expect.Outcome)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, len(s.Steps)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, steps int) error {
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)

	case AssertOutcomeCount:
		if !ir.ValidOutcomes[ir.Outcome(a.Outcome)] {
			return fmt.Errorf("assertions[%d]: outcome_count requires a valid outcome, got %q", index, a.Outcome)
		}

	case AssertOutcomeOrder:
		if len(a.Outcomes) != steps {
			return fmt.Errorf("assertions[%d]: outcome_order lists %d outcomes for %d steps", index, len(a.Outcomes), steps)
		}
		for j, o := range a.Outcomes {
			if !ir.ValidOutcomes[ir.Outcome(o)] {
				return fmt.Errorf("assertions[%d].outcomes[%d]: unknown outcome %q", index, j, o)
			}
		}

	case AssertUnboundedCount:
		if !limitFields[a.Field] {
			return fmt.Errorf("assertions[%d]: unbounded_count requires field max_velocity, min_acceleration or max_acceleration, got %q", index, a.Field)
		}

	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}

	return nil
}
