// Package geometry provides the planar value types consumed by trajectory
// constraints.
//
// All types are plain immutable values. Lengths are metres and angles are
// radians; nothing in this package normalizes or validates its inputs, so
// non-finite coordinates flow through comparisons unchanged.
package geometry
