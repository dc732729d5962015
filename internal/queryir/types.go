package queryir

// Query is a sealed query node.
type Query interface {
	queryNode()
}

// Predicate is a sealed filter node.
type Predicate interface {
	predicateNode()
}

// Tables that can be queried.
const (
	TableRuns        = "runs"
	TableEvaluations = "evaluations"
)

// Columns lists the queryable columns of each table in declaration order.
var Columns = map[string][]string{
	TableRuns: {
		"id", "constraint_name", "spec_hash", "seq", "engine_version", "ir_version",
	},
	TableEvaluations: {
		"run_id", "seq", "x", "y", "heading", "curvature", "velocity",
		"in_region", "outcome", "max_velocity", "min_acceleration", "max_acceleration",
	},
}

// Select reads Fields from a table, keeping rows that satisfy Filter.
//
//	Select{
//	  From:   "evaluations",
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "run_id", Value: "0192..."},
//	    Equals{Field: "outcome", Value: "gated"},
//	  }},
//	}
//
// An empty Fields list selects every column in Columns order.
type Select struct {
	From   string
	Filter Predicate // nil = no filter
	Fields []string
	Limit  int // 0 = no limit
}

func (Select) queryNode() {}

// Equals is field = value. Value must be a string, bool, int, int64 or
// float64.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// Op is a comparison operator for Compare.
type Op string

const (
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
)

// ValidOps lists the operators Compare accepts.
var ValidOps = map[Op]bool{
	OpLess:         true,
	OpLessEqual:    true,
	OpGreater:      true,
	OpGreaterEqual: true,
}

// Compare is field <op> value for numeric columns.
// NULL (unbounded) columns never satisfy a comparison.
type Compare struct {
	Field string
	Op    Op
	Value float64
}

func (Compare) predicateNode() {}

// IsNull matches rows where field is NULL, or with Not set, where it is
// present.
type IsNull struct {
	Field string
	Not   bool
}

func (IsNull) predicateNode() {}

// And is a conjunction. An empty And matches every row.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Conj builds an And from the non-nil predicates, collapsing the trivial
// cases: no predicates yields nil and a single predicate is returned as is.
func Conj(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
