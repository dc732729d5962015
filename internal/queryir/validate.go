package queryir

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidQuery is wrapped by every error Validate returns.
var ErrInvalidQuery = errors.New("invalid query")

// Validate checks a query against the table schema: the table must exist,
// every referenced column must belong to it and every literal must have a
// supported type. All problems are reported together.
//
// Validate is a pure function with no side effects.
func Validate(q Query) error {
	v := &validator{}
	v.validateQuery(q)
	if len(v.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidQuery, errors.Join(v.problems...))
}

type validator struct {
	table    string
	problems []error
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Errorf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addProblem("nil query")
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if _, ok := Columns[sel.From]; !ok {
		v.addProblem("unknown table %q", sel.From)
		return
	}
	v.table = sel.From
	for _, f := range sel.Fields {
		v.checkColumn(f)
	}
	if sel.Limit < 0 {
		v.addProblem("limit must be non-negative, got %d", sel.Limit)
	}
	v.validatePredicate(sel.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.checkColumn(pred.Field)
		switch val := pred.Value.(type) {
		case string, bool, int, int64:
		case float64:
			if math.IsNaN(val) || math.IsInf(val, 0) {
				v.addProblem("field %q compared to non-finite %v; use IsNull for unbounded values", pred.Field, val)
			}
		case nil:
			v.addProblem("field %q compared to nil; use IsNull", pred.Field)
		default:
			v.addProblem("field %q has unsupported value type %T", pred.Field, pred.Value)
		}
	case Compare:
		v.checkColumn(pred.Field)
		if !ValidOps[pred.Op] {
			v.addProblem("unknown operator %q", pred.Op)
		}
		if math.IsNaN(pred.Value) {
			v.addProblem("field %q compared to NaN", pred.Field)
		}
	case IsNull:
		v.checkColumn(pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) checkColumn(field string) {
	for _, c := range Columns[v.table] {
		if c == field {
			return
		}
	}
	v.addProblem("unknown column %q in %s", field, v.table)
}
