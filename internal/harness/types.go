package harness

import "github.com/roach88/trajcon/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Run is the recorded run.
	Run ir.Run `json:"run"`

	// Trace holds the evaluations in seq order, as read back from the store.
	Trace []ir.Evaluation `json:"trace"`

	// Errors contains one message per failed check.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.Evaluation{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcomes returns the outcome of each trace entry in order.
func (r *Result) Outcomes() []string {
	out := make([]string, len(r.Trace))
	for i, ev := range r.Trace {
		out[i] = string(ev.Outcome)
	}
	return out
}
