package dto

import "github.com/casportal/casportal/internal/app/query"

// QueryRequest is the common body of every listing endpoint: an entity
// specific filter document, an ordered sort list and optional pagination.
type QueryRequest struct {
	Filter     map[string]any    `json:"filter"`
	Sort       []query.SortParam `json:"sort"`
	Pagination *query.Pagination `json:"pagination"`
}
