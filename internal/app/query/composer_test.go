package query

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/pkg/apperrors"
)

func testRegistry() *Registry {
	return NewRegistry(map[string]Field{
		"id":                {Column: "r.id", Sortable: true},
		"title":             {Column: "r.title", Sortable: true},
		"date_added":        {Column: "r.date_added", Sortable: true},
		"author_first_name": {Column: "p.first_name", Join: "author"},
	}, map[string]string{
		"author": "profiles p ON p.id = r.profile_id",
	})
}

func baseBuilder() sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("r.id").From("reflections r")
}

func TestParseEquality(t *testing.T) {
	conds, joins, err := testRegistry().Parse(map[string]any{"title": "Trip"})
	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Empty(t, joins)
	assert.Equal(t, Condition{Column: "r.title", Op: OpEq, Value: "Trip"}, conds[0])
}

func TestParseOperatorSuffixes(t *testing.T) {
	conds, _, err := testRegistry().Parse(map[string]any{
		"date_added_gte": "2024-06-01",
		"date_added_lte": "2024-01-01",
		"title_con":      "trip",
	})
	require.NoError(t, err)
	require.Len(t, conds, 3)

	byColOp := map[Op]Condition{}
	for _, c := range conds {
		byColOp[c.Op] = c
	}
	// the bound suffixes read from the value's side: X_gte means the
	// value is >= the column, i.e. column <= value
	assert.Equal(t, "r.date_added", byColOp[OpUpperBound].Column)
	assert.Equal(t, "2024-06-01", byColOp[OpUpperBound].Value)
	assert.Equal(t, "r.date_added", byColOp[OpLowerBound].Column)
	assert.Equal(t, "r.title", byColOp[OpContains].Column)
}

func TestParseUnknownFieldRejected(t *testing.T) {
	_, _, err := testRegistry().Parse(map[string]any{"password": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestParseBareSuffixIsAFieldName(t *testing.T) {
	// a key that is nothing but a suffix must not resolve to an empty field
	_, _, err := testRegistry().Parse(map[string]any{"_con": "x"})
	require.Error(t, err)
}

func TestParseNestedFieldRequestsJoin(t *testing.T) {
	conds, joins, err := testRegistry().Parse(map[string]any{
		"author_first_name": "Ada",
		"title":             "Trip",
	})
	require.NoError(t, err)
	require.Len(t, conds, 2)
	assert.Equal(t, []string{"author"}, joins)
}

func TestApplyConditionsSQL(t *testing.T) {
	b := ApplyConditions(baseBuilder(), []Condition{
		{Column: "r.title", Op: OpContains, Value: "trip"},
		{Column: "r.date_added", Op: OpUpperBound, Value: "2024-06-01"},
		{Column: "r.date_added", Op: OpLowerBound, Value: "2024-01-01"},
		{Column: "r.profile_id", Op: OpEq, Value: int64(7)},
	})
	sql, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT r.id FROM reflections r WHERE r.title LIKE $1 AND r.date_added <= $2 AND r.date_added >= $3 AND r.profile_id = $4",
		sql)
	assert.Equal(t, []any{"%trip%", "2024-06-01", "2024-01-01", int64(7)}, args)
}

func TestApplyJoinsSQL(t *testing.T) {
	b := ApplyJoins(baseBuilder(), testRegistry(), []string{"author"})
	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT r.id FROM reflections r JOIN profiles p ON p.id = r.profile_id", sql)
}

func TestApplySortsPreservesOrder(t *testing.T) {
	b := ApplySorts(baseBuilder(), []Sort{
		{Column: "r.date_added", Desc: true},
		{Column: "r.id"},
	})
	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT r.id FROM reflections r ORDER BY r.date_added DESC, r.id ASC", sql)
}

func TestParseSortsRejectsJoinedAndUnknownFields(t *testing.T) {
	reg := testRegistry()

	_, err := reg.ParseSorts([]SortParam{{Field: "author_first_name"}})
	require.Error(t, err)

	_, err = reg.ParseSorts([]SortParam{{Field: "nope"}})
	require.Error(t, err)

	sorts, err := reg.ParseSorts([]SortParam{{Field: "title", Desc: true}})
	require.NoError(t, err)
	assert.Equal(t, []Sort{{Column: "r.title", Desc: true}}, sorts)
}

func TestApplyPagination(t *testing.T) {
	limit, page := 10, 3
	b := ApplyPagination(baseBuilder(), &Pagination{Limit: &limit, Page: &page})
	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT r.id FROM reflections r LIMIT 10 OFFSET 30", sql)
}

func TestApplyPaginationZeroLimit(t *testing.T) {
	// a zero limit is legal: callers get an empty page but still a count
	limit := 0
	b := ApplyPagination(baseBuilder(), &Pagination{Limit: &limit})
	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT r.id FROM reflections r LIMIT 0 OFFSET 0", sql)
}

func TestApplyPaginationNilLimitDisablesPaging(t *testing.T) {
	page := 5
	b := ApplyPagination(baseBuilder(), &Pagination{Page: &page})
	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT r.id FROM reflections r", sql)
}

func TestParsePaginationRejectsNegatives(t *testing.T) {
	neg := -1
	_, err := testRegistry().ParsePagination(&Pagination{Limit: &neg})
	require.Error(t, err)
	_, err = testRegistry().ParsePagination(&Pagination{Page: &neg})
	require.Error(t, err)
}
