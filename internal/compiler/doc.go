// Package compiler turns CUE constraint specs into canonical IR and builds
// runtime constraint trees from that IR.
//
// Specs are declared under the top-level "constraint" struct, one field per
// named constraint:
//
//	constraint: slowZone: {
//	    description: "Crawl through the loading bay"
//	    kind:        "rectangular_region"
//	    bottom_left: {x: 0, y: 0}
//	    top_right:   {x: 10, y: 10}
//	    inner: {kind: "max_velocity", max_velocity: 1.5}
//	}
//
// The pipeline has three stages:
//
//  1. LoadDir / LoadFiles read CUE instances and call CompileConstraint for
//     each named constraint. Compilation checks structure and types only.
//  2. Validate and AnalyzeRefs check schema rules and report every problem
//     found, errors and warnings alike.
//  3. Build resolves refs and constructs constraint.Constraint values.
//
// Region corners are never reordered or rejected. An inverted region is
// reported as a warning by Validate and compiles to a region that contains
// no poses.
package compiler
