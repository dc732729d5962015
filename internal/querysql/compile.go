// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/trajcon/internal/queryir"
)

// orderKeys is the deterministic ordering for each table. Every compiled
// query ends in one of these so reads are stable across runs.
var orderKeys = map[string]string{
	queryir.TableRuns:        "seq ASC, id ASC COLLATE BINARY",
	queryir.TableEvaluations: "seq ASC, run_id ASC COLLATE BINARY",
}

// Compile converts a query to SQL and its positional parameters.
//
// The query is validated first, so every identifier in the output comes from
// queryir.Columns. Literal values are always bound as ? parameters.
func Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, err
	}

	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		sel = *query
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}

	fields := sel.Fields
	if len(fields) == 0 {
		fields = queryir.Columns[sel.From]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(fields, ", "), sel.From)

	var params []any
	if sel.Filter != nil {
		where, p, err := compilePredicate(sel.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = p
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(orderKeys[sel.From])

	if sel.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, sel.Limit)
	}

	return b.String(), params, nil
}

func compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return pred.Field + " = ?", []any{pred.Value}, nil

	case queryir.Compare:
		return fmt.Sprintf("%s %s ?", pred.Field, pred.Op), []any{pred.Value}, nil

	case queryir.IsNull:
		if pred.Not {
			return pred.Field + " IS NOT NULL", nil, nil
		}
		return pred.Field + " IS NULL", nil, nil

	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, sub := range pred.Predicates {
			sql, p, err := compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, p...)
		}
		if len(parts) == 1 {
			return parts[0], params, nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil

	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}
