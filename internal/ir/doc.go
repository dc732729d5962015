// Package ir provides the canonical intermediate representation for trajcon.
//
// This package contains type definitions and canonical encoding only. All
// other internal packages import ir; ir imports nothing internal. This keeps
// IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Spec parameters are finite numbers; infinities exist only as results
//   - All JSON tags use snake_case
//   - Evaluations are ordered by logical clock (seq), never wall-clock time
package ir
