// Package constraint implements trajectory constraints: capabilities that
// bound the feasible velocity and acceleration of a robot at a given pose,
// path curvature and velocity.
//
// Every variant implements Constraint, so gates and limits compose freely.
// A RectangularRegion wraps another Constraint and applies it only while the
// pose lies inside an axis-aligned rectangle; outside, it imposes nothing.
//
// # Unconstrained Values
//
// "No restriction" is expressed with infinities: a max velocity of +Inf and an
// acceleration window of (-Inf, +Inf). These are the identity elements of the
// min/max reduction in Reduce, so a constraint that does not apply can be
// combined with others without affecting the result.
//
// # Concurrency
//
// All types in this package are immutable after construction. They are safe
// for concurrent use provided any wrapped Constraint is.
package constraint
