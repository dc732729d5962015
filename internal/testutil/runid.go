package testutil

// DefaultRunID is the run id FixedRunIDGenerator falls back to.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator hands out the same run id on every call, so golden
// traces of a scenario are byte-identical across runs.
//
// Unlike engine.FixedGenerator, which walks a list and panics when it runs
// out, this generator never exhausts.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id. Scenario files usually
// supply it:
//
//	run_id: "test-run-slow-zone"
//
// An empty id selects DefaultRunID.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate implements engine.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
