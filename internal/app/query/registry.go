package query

import (
	"sort"
	"strings"

	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// Field binds an external filter/sort name to a SQL column. Join, when set,
// names a join clause the owning query must attach before the column can be
// referenced.
type Field struct {
	Column string
	Join   string
	// Sortable marks fields that may appear in sort documents.
	Sortable bool
}

// Registry holds the filterable surface of one entity. Only registered names
// are reachable from a query document; everything else is rejected up front.
type Registry struct {
	fields map[string]Field
	joins  map[string]string
}

// NewRegistry builds an entity registry. The joins map binds the join names
// referenced by fields to their SQL clauses.
func NewRegistry(fields map[string]Field, joins map[string]string) *Registry {
	return &Registry{fields: fields, joins: joins}
}

// filter key suffixes, checked longest-match-first
var opSuffixes = []struct {
	suffix string
	op     Op
}{
	{"_gte", OpUpperBound},
	{"_lte", OpLowerBound},
	{"_con", OpContains},
}

// Parse resolves a raw filter document into conditions plus the set of join
// names the conditions depend on. Keys carry an optional operator suffix; a
// bare key means equality. Unknown fields fail the whole document.
func (r *Registry) Parse(filter map[string]any) ([]Condition, []string, error) {
	if len(filter) == 0 {
		return nil, nil, nil
	}

	// map iteration order is random; stabilize so generated SQL is
	// deterministic for identical documents
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	joinSet := make(map[string]bool)
	var joins []string
	for _, key := range keys {
		name, op := splitOp(key)
		field, ok := r.fields[name]
		if !ok {
			return nil, nil, apperrors.NewValidationError("unknown filter field: " + key)
		}
		conds = append(conds, Condition{Column: field.Column, Op: op, Value: filter[key]})
		if field.Join != "" && !joinSet[field.Join] {
			joinSet[field.Join] = true
			joins = append(joins, field.Join)
		}
	}
	return conds, joins, nil
}

// ParseSorts resolves sort parameters in order. Only sortable fields are
// accepted, and fields that need a join cannot be sorted on.
func (r *Registry) ParseSorts(params []SortParam) ([]Sort, error) {
	if len(params) == 0 {
		return nil, nil
	}
	sorts := make([]Sort, 0, len(params))
	for _, p := range params {
		field, ok := r.fields[p.Field]
		if !ok || !field.Sortable {
			return nil, apperrors.NewValidationError("unknown sort field: " + p.Field)
		}
		sorts = append(sorts, Sort{Column: field.Column, Desc: p.Desc})
	}
	return sorts, nil
}

// ParsePagination validates a pagination document.
func (r *Registry) ParsePagination(p *Pagination) (*Pagination, error) {
	if err := validatePagination(p); err != nil {
		return nil, err
	}
	return p, nil
}

func splitOp(key string) (string, Op) {
	for _, s := range opSuffixes {
		if strings.HasSuffix(key, s.suffix) && len(key) > len(s.suffix) {
			return strings.TrimSuffix(key, s.suffix), s.op
		}
	}
	return key, OpEq
}
