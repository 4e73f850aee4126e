package dto

// CreateCommentRequest represents a new comment on a reflection
type CreateCommentRequest struct {
	ReflectionID int64  `json:"reflectionId" binding:"required"`
	Content      string `json:"content" binding:"required"`
}

// UpdateCommentRequest replaces a comment's content
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}
