package dto

// CreateGroupRequest represents a new group; the caller becomes coordinator
type CreateGroupRequest struct {
	Name           string `json:"name" binding:"required"`
	GraduationYear int    `json:"graduationYear" binding:"required"`
	Description    string `json:"description"`
}

// UpdateGroupRequest patches group metadata
type UpdateGroupRequest struct {
	Name           *string `json:"name"`
	GraduationYear *int    `json:"graduationYear"`
	Description    *string `json:"description"`
}

// JoinRequestDecision accepts or denies a pending membership request
type JoinRequestDecision struct {
	Accept bool `json:"accept"`
}
