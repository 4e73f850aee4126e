package models

import "time"

// Visibility tiers for reflections. The tier stored on a profile is the
// default applied to new reflections.
const (
	VisibilityCoordinator = 0 // only the author's group coordinator
	VisibilityGroup       = 1 // the author's whole group
	VisibilityEveryone    = 2
)

// Profile represents a portal member
type Profile struct {
	ID             int64     `json:"id" db:"id"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	PostVisibility int       `json:"postVisibility" db:"post_visibility"`
	IsModerator    bool      `json:"isModerator" db:"is_moderator"`
	IsAdmin        bool      `json:"isAdmin" db:"is_admin"`
	GroupID        *string   `json:"groupId,omitempty" db:"group_id"`
	AvatarID       *string   `json:"avatarId,omitempty" db:"avatar_id"`
	DateJoined     time.Time `json:"dateJoined" db:"date_joined"`
	LastOnline     time.Time `json:"lastOnline" db:"last_online"`

	// Related entities
	Group  *Group  `json:"group,omitempty"`
	Avatar *Avatar `json:"avatar,omitempty"`
}

// FullName returns the display name as shown in notifications and listings.
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// HasRole reports whether the profile carries a moderation role (admin or
// moderator). Role holders bypass ownership checks.
func (p *Profile) HasRole() bool {
	return p.IsAdmin || p.IsModerator
}
