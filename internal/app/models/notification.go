package models

import "time"

// Notification has one author and a set of recipient associations.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	ProfileID int64     `json:"profileId" db:"profile_id"`
	Content   string    `json:"content" db:"content"`
	DateSent  time.Time `json:"dateSent" db:"date_sent"`

	// Read mirrors the caller's recipient row when loaded for a recipient
	Read *bool `json:"read,omitempty" db:"-"`

	Recipients []NotificationRecipient `json:"recipients,omitempty"`
}

// NotificationRecipient is the association entity between a notification and
// a recipient profile. The read flag is per-edge state, independent for each
// recipient.
type NotificationRecipient struct {
	ID             int64 `json:"id" db:"id"`
	NotificationID int64 `json:"notificationId" db:"notification_id"`
	ProfileID      int64 `json:"profileId" db:"profile_id"`
	Read           bool  `json:"read" db:"read"`
}
