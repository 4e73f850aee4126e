package models

import "time"

// ReflectionReport flags a reflection for moderator review
type ReflectionReport struct {
	ID           int64     `json:"id" db:"id"`
	ReflectionID int64     `json:"reflectionId" db:"reflection_id"`
	Reason       string    `json:"reason" db:"reason"`
	DateAdded    time.Time `json:"dateAdded" db:"date_added"`
}

// CommentReport flags a comment for moderator review
type CommentReport struct {
	ID        int64     `json:"id" db:"id"`
	CommentID int64     `json:"commentId" db:"comment_id"`
	Reason    string    `json:"reason" db:"reason"`
	DateAdded time.Time `json:"dateAdded" db:"date_added"`
}
