package models

import "time"

// Attachment is a binary payload stored outside the database; the row only
// holds the generated storage path and the original filename.
type Attachment struct {
	ID           string    `json:"id" db:"id"`
	ReflectionID int64     `json:"reflectionId" db:"reflection_id"`
	SavedPath    string    `json:"-" db:"saved_path"`
	Filename     string    `json:"filename" db:"filename"`
	DateAdded    time.Time `json:"dateAdded" db:"date_added"`
}

// Avatar is an externally stored image referenced by a profile or a group.
type Avatar struct {
	ID        string    `json:"id" db:"id"`
	SavedPath string    `json:"-" db:"saved_path"`
	Filename  string    `json:"filename" db:"filename"`
	DateAdded time.Time `json:"dateAdded" db:"date_added"`
}
