// Package harness provides conformance testing for constraint specs.
//
// A scenario names CUE spec files, one constraint and a list of query steps.
// The harness builds the constraint, records every step through the real
// evaluation engine and checks the answers against each step's expectations
// and the scenario's assertions.
//
// # Scenario Format
//
//	name: slow_zone_boundary
//	description: "Velocity cap applies on the region edge"
//	specs:
//	  - ../specs/bay.cue
//	constraint: slowZone
//	run_id: test-run-slow-zone
//	steps:
//	  - x: 5
//	    y: 5
//	    velocity: 1
//	    expect: {in_region: true, max_velocity: 3}
//	  - x: 15
//	    y: 5
//	    expect: {in_region: false, max_velocity: .inf}
//	assertions:
//	  - type: outcome_count
//	    outcome: gated
//	    count: 1
//	  - type: outcome_order
//	    outcomes: [delegated, gated]
//
// YAML's .inf and -.inf spell unbounded limits.
//
// # Assertion Types
//
//   - outcome_count: exactly count evaluations have the given outcome
//   - outcome_order: the outcome sequence equals outcomes, step by step
//   - unbounded_count: exactly count stored evaluations have field unbounded
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite store with a
// testutil.DeterministicClock and a testutil.FixedRunIDGenerator, so the
// recorded trace is byte-identical across runs and can be compared with a
// golden file.
package harness
