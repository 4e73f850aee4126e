// Package query turns client-supplied filter, sort and pagination documents
// into squirrel builder transforms. Field names are resolved through explicit
// per-entity registries; unknown fields are rejected rather than ignored.
package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// Op identifies a filter comparison operator.
type Op int

const (
	// OpEq matches rows whose column equals the value.
	OpEq Op = iota
	// OpUpperBound matches rows whose column is <= the value. It is bound
	// to the "_gte" suffix: clients state the bound from the value's point
	// of view ("the value is gte the column").
	OpUpperBound
	// OpLowerBound matches rows whose column is >= the value ("_lte").
	OpLowerBound
	// OpContains matches rows whose column contains the value as a
	// substring ("_con").
	OpContains
)

// Condition is a single resolved filter clause.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// Sort is a single resolved ordering clause.
type Sort struct {
	Column string
	Desc   bool
}

// SortParam is the wire form of one sort entry.
type SortParam struct {
	Field string `json:"field" binding:"required"`
	Desc  bool   `json:"desc"`
}

// Pagination selects one page of a result set. Page numbering is 0-based.
// A nil Limit disables paging entirely; a zero Limit is legal and yields an
// empty page while counts remain exact.
type Pagination struct {
	Limit *int `json:"limit"`
	Page  *int `json:"page"`
}

// Apply attaches conditions, required joins, ordering and pagination to the
// builder in that order.
func Apply(b sq.SelectBuilder, r *Registry, conds []Condition, joins []string, sorts []Sort, p *Pagination) sq.SelectBuilder {
	b = ApplyJoins(b, r, joins)
	b = ApplyConditions(b, conds)
	b = ApplySorts(b, sorts)
	b = ApplyPagination(b, p)
	return b
}

// ApplyConditions appends WHERE clauses for each condition. Multiple
// conditions always combine conjunctively.
func ApplyConditions(b sq.SelectBuilder, conds []Condition) sq.SelectBuilder {
	for _, c := range conds {
		switch c.Op {
		case OpUpperBound:
			b = b.Where(sq.LtOrEq{c.Column: c.Value})
		case OpLowerBound:
			b = b.Where(sq.GtOrEq{c.Column: c.Value})
		case OpContains:
			b = b.Where(sq.Like{c.Column: "%" + fmt.Sprint(c.Value) + "%"})
		default:
			b = b.Where(sq.Eq{c.Column: c.Value})
		}
	}
	return b
}

// ApplyJoins attaches each named join registered for the entity. Joins are
// deduplicated by Parse, so each clause is attached at most once.
func ApplyJoins(b sq.SelectBuilder, r *Registry, joins []string) sq.SelectBuilder {
	for _, name := range joins {
		if clause, ok := r.joins[name]; ok {
			b = b.Join(clause)
		}
	}
	return b
}

// ApplySorts appends ORDER BY clauses preserving the caller's ordering, so
// earlier entries take precedence.
func ApplySorts(b sq.SelectBuilder, sorts []Sort) sq.SelectBuilder {
	for _, s := range sorts {
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		b = b.OrderBy(s.Column + dir)
	}
	return b
}

// ApplyPagination translates {limit, page} into LIMIT/OFFSET.
func ApplyPagination(b sq.SelectBuilder, p *Pagination) sq.SelectBuilder {
	if p == nil || p.Limit == nil {
		return b
	}
	limit := *p.Limit
	if limit < 0 {
		limit = 0
	}
	page := 0
	if p.Page != nil && *p.Page > 0 {
		page = *p.Page
	}
	return b.Limit(uint64(limit)).Offset(uint64(limit * page))
}

// validatePagination rejects documents a client could only produce by
// mistake.
func validatePagination(p *Pagination) error {
	if p == nil {
		return nil
	}
	if p.Limit != nil && *p.Limit < 0 {
		return apperrors.NewValidationError("pagination limit must not be negative")
	}
	if p.Page != nil && *p.Page < 0 {
		return apperrors.NewValidationError("pagination page must not be negative")
	}
	return nil
}
