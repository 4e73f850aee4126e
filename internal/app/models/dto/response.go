package dto

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps one page of a filtered listing. Count is the total over
// the filtered, unpaginated result set.
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Count int64 `json:"count"`
}

// NewListResponse builds a page, normalizing nil slices to empty ones so the
// JSON form is always an array.
func NewListResponse[T any](items []T, count int64) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: count}
}
