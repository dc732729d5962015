package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/trajcon/internal/ir"
)

// ErrUnrepresentable is returned for a bound that cannot be stored: NaN, or
// an infinity pointing the wrong way for its column (e.g. a -Inf max).
var ErrUnrepresentable = errors.New("bound cannot be stored")

// boundToNull encodes b for a column whose unbounded value is unbounded.
// The matching infinity becomes NULL; finite values are stored as is.
func boundToNull(b ir.Bound, unbounded float64, column string) (sql.NullFloat64, error) {
	f := float64(b)
	switch {
	case math.IsNaN(f):
		return sql.NullFloat64{}, fmt.Errorf("%s: %w: NaN", column, ErrUnrepresentable)
	case f == unbounded:
		return sql.NullFloat64{}, nil
	case math.IsInf(f, 0):
		return sql.NullFloat64{}, fmt.Errorf("%s: %w: %s", column, ErrUnrepresentable, b)
	default:
		return sql.NullFloat64{Float64: f, Valid: true}, nil
	}
}

// nullToBound reverses boundToNull.
func nullToBound(n sql.NullFloat64, unbounded float64) ir.Bound {
	if !n.Valid {
		return ir.Bound(unbounded)
	}
	return ir.Bound(n.Float64)
}

func boolToNull(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullToBool(n sql.NullBool) *bool {
	if !n.Valid {
		return nil
	}
	return ir.Bool(n.Bool)
}

// evaluationLimits encodes the three limits of e in column order.
func evaluationLimits(e ir.Evaluation) (maxVel, minAcc, maxAcc sql.NullFloat64, err error) {
	if maxVel, err = boundToNull(e.MaxVelocity, math.Inf(1), "max_velocity"); err != nil {
		return
	}
	if minAcc, err = boundToNull(e.MinAcceleration, math.Inf(-1), "min_acceleration"); err != nil {
		return
	}
	maxAcc, err = boundToNull(e.MaxAcceleration, math.Inf(1), "max_acceleration")
	return
}
