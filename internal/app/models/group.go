package models

import "time"

// Group represents a coordinated member group. The identifier is a short
// random token rather than a sequence so group ids cannot be enumerated.
type Group struct {
	ID             string    `json:"id" db:"id"`
	CoordinatorID  int64     `json:"coordinatorId" db:"coordinator_id"`
	Name           string    `json:"name" db:"name"`
	GraduationYear int       `json:"graduationYear" db:"graduation_year"`
	Description    string    `json:"description" db:"description"`
	AvatarID       *string   `json:"avatarId,omitempty" db:"avatar_id"`
	DateCreated    time.Time `json:"dateCreated" db:"date_created"`

	// Related entities
	Coordinator *Profile `json:"coordinator,omitempty"`
	Avatar      *Avatar  `json:"avatar,omitempty"`
}

// GroupJoinRequest is a pending membership request, keyed by (group, profile)
type GroupJoinRequest struct {
	GroupID   string    `json:"groupId" db:"group_id"`
	ProfileID int64     `json:"profileId" db:"profile_id"`
	DateAdded time.Time `json:"dateAdded" db:"date_added"`

	// Related entities
	Profile *Profile `json:"profile,omitempty"`
	Group   *Group   `json:"group,omitempty"`
}
