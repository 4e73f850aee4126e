package dto

// CreateReflectionRequest represents a new reflection. When PostVisibility
// is absent the author's default visibility applies.
type CreateReflectionRequest struct {
	Title          string   `json:"title" binding:"required"`
	TextContent    string   `json:"textContent" binding:"required"`
	PostVisibility *int     `json:"postVisibility"`
	Creativity     bool     `json:"creativity"`
	Activity       bool     `json:"activity"`
	Service        bool     `json:"service"`
	Tags           []string `json:"tags"`
}

// UpdateReflectionRequest patches a reflection; nil fields are untouched.
// Category flags travel together so the at-least-one rule stays checkable.
type UpdateReflectionRequest struct {
	Title          *string   `json:"title"`
	TextContent    *string   `json:"textContent"`
	PostVisibility *int      `json:"postVisibility"`
	Creativity     *bool     `json:"creativity"`
	Activity       *bool     `json:"activity"`
	Service        *bool     `json:"service"`
	Tags           *[]string `json:"tags"`
}
