// Package queryir is a small query intermediate representation for reading
// recorded runs and evaluations back out of the store.
//
// Callers such as `trajcon trace` describe what they want as a Select over a
// table with a tree of predicates; querysql turns it into parameterized SQL.
// Keeping the filter as data means the CLI never builds SQL strings and
// every column name is checked against a fixed schema before compilation.
//
// Query and Predicate are sealed interfaces using the marker method pattern,
// so backends can switch exhaustively over the node types:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Compare:
//	case IsNull:
//	case And:
//	}
//
// Unbounded limits are stored as NULL, so IsNull{Field: "max_velocity"}
// selects the evaluations whose velocity was unconstrained.
package queryir
