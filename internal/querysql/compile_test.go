package querysql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/queryir"
)

func TestCompile_AllColumns(t *testing.T) {
	sql, params, err := Compile(queryir.Select{From: queryir.TableRuns})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, constraint_name, spec_hash, seq, engine_version, ir_version FROM runs ORDER BY seq ASC, id ASC COLLATE BINARY",
		sql)
	assert.Empty(t, params)
}

func TestCompile_FilteredEvaluations(t *testing.T) {
	q := &queryir.Select{
		From:   queryir.TableEvaluations,
		Fields: []string{"seq", "outcome"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "run_id", Value: "run-1"},
			queryir.Equals{Field: "outcome", Value: "gated"},
		}},
	}

	sql, params, err := Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT seq, outcome FROM evaluations WHERE (run_id = ? AND outcome = ?) ORDER BY seq ASC, run_id ASC COLLATE BINARY",
		sql)
	assert.Equal(t, []any{"run-1", "gated"}, params)
	assert.NotContains(t, sql, "run-1")
}

func TestCompile_CompareNullAndLimit(t *testing.T) {
	q := queryir.Select{
		From:   queryir.TableEvaluations,
		Fields: []string{"seq"},
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Compare{Field: "max_velocity", Op: queryir.OpLessEqual, Value: 3},
			queryir.IsNull{Field: "min_acceleration"},
			queryir.IsNull{Field: "max_acceleration", Not: true},
		}},
		Limit: 5,
	}

	sql, params, err := Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT seq FROM evaluations WHERE (max_velocity <= ? AND min_acceleration IS NULL AND max_acceleration IS NOT NULL) ORDER BY seq ASC, run_id ASC COLLATE BINARY LIMIT ?",
		sql)
	assert.Equal(t, []any{3.0, 5}, params)
}

func TestCompile_SinglePredicate(t *testing.T) {
	sql, params, err := Compile(queryir.Select{
		From:   queryir.TableEvaluations,
		Fields: []string{"seq"},
		Filter: queryir.Equals{Field: "in_region", Value: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT seq FROM evaluations WHERE in_region = ? ORDER BY seq ASC, run_id ASC COLLATE BINARY", sql)
	assert.Equal(t, []any{true}, params)
}

func TestCompile_EmptyAnd(t *testing.T) {
	sql, _, err := Compile(queryir.Select{
		From:   queryir.TableRuns,
		Fields: []string{"id"},
		Filter: queryir.And{},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 1")
}

func TestCompile_RejectsInvalidQuery(t *testing.T) {
	_, _, err := Compile(queryir.Select{
		From:   queryir.TableEvaluations,
		Filter: queryir.Equals{Field: "outcome; DROP TABLE runs", Value: "x"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, queryir.ErrInvalidQuery))

	_, _, err = Compile(nil)
	require.Error(t, err)
}

func TestCompile_Deterministic(t *testing.T) {
	q := queryir.Select{
		From: queryir.TableEvaluations,
		Filter: queryir.Conj(
			queryir.Equals{Field: "run_id", Value: "r"},
			queryir.Compare{Field: "velocity", Op: queryir.OpGreater, Value: 1},
		),
	}

	first, _, err := Compile(q)
	require.NoError(t, err)
	for range 10 {
		sql, _, err := Compile(q)
		require.NoError(t, err)
		assert.Equal(t, first, sql)
	}
}
