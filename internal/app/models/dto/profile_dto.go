package dto

// UpdateProfileRequest represents profile update data. Pointer fields are
// patched only when present.
type UpdateProfileRequest struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	PostVisibility *int    `json:"postVisibility"`
}

// UpdateRolesRequest toggles the moderator flag; admin only.
type UpdateRolesRequest struct {
	IsModerator bool `json:"isModerator"`
}
