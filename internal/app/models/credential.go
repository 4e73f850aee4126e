package models

import "time"

// BasicLogin is the email/password credential for a profile
type BasicLogin struct {
	ProfileID        int64  `json:"profileId" db:"profile_id"`
	Email            string `json:"email" db:"email"`
	Password         string `json:"-" db:"password"`
	VerificationSent bool   `json:"verificationSent" db:"verification_sent"`
	Verified         bool   `json:"verified" db:"verified"`
}

// ForeignLogin is a third-party identity (Google/Facebook) bound to a profile.
// The (provider, foreign id) pair is globally unique.
type ForeignLogin struct {
	ProfileID int64  `json:"profileId" db:"profile_id"`
	Provider  string `json:"provider" db:"provider"`
	ForeignID string `json:"foreignId" db:"foreign_id"`
	Email     string `json:"email" db:"email"`
}

// ConfirmationCode is a single-use token tied to a profile, used for both
// email confirmation and password recovery. It expires after CodeValidity.
type ConfirmationCode struct {
	ProfileID   int64     `json:"profileId" db:"profile_id"`
	Code        string    `json:"code" db:"code"`
	DateCreated time.Time `json:"dateCreated" db:"date_created"`
}

// CodeValidity is the window during which a confirmation code stays valid and
// during which requesting a new one is rejected.
const CodeValidity = 15 * time.Minute

// Expired reports whether the code is older than the validity window.
func (c *ConfirmationCode) Expired(now time.Time) bool {
	return c.DateCreated.Before(now.Add(-CodeValidity))
}
