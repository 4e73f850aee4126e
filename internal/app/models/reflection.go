package models

import "time"

// Reflection is an authored post with a visibility tier and category flags.
// At least one of the creativity/activity/service flags must be true.
type Reflection struct {
	ID             int64     `json:"id" db:"id"`
	ProfileID      int64     `json:"profileId" db:"profile_id"`
	Title          string    `json:"title" db:"title"`
	TextContent    string    `json:"textContent" db:"text_content"`
	Slug           string    `json:"slug" db:"slug"`
	PostVisibility int       `json:"postVisibility" db:"post_visibility"`
	Creativity     bool      `json:"creativity" db:"creativity"`
	Activity       bool      `json:"activity" db:"activity"`
	Service        bool      `json:"service" db:"service"`
	DateAdded      time.Time `json:"dateAdded" db:"date_added"`

	// IsFavourite is an ephemeral per-caller annotation, never persisted
	IsFavourite bool `json:"isFavourite" db:"-"`

	// Related entities
	Author      *Profile     `json:"author,omitempty"`
	Tags        []Tag        `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// HasCategory reports whether at least one category flag is set.
func (r *Reflection) HasCategory() bool {
	return r.Creativity || r.Activity || r.Service
}

// Tag is a reusable label. Names are case-sensitively unique; a tag is
// created on first use and shared by every reflection that references it.
type Tag struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	DateAdded time.Time `json:"dateAdded" db:"date_added"`
}

// Comment belongs to exactly one reflection and one authoring profile
type Comment struct {
	ID           int64     `json:"id" db:"id"`
	ProfileID    int64     `json:"profileId" db:"profile_id"`
	ReflectionID int64     `json:"reflectionId" db:"reflection_id"`
	Content      string    `json:"content" db:"content"`
	DateAdded    time.Time `json:"dateAdded" db:"date_added"`

	Author *Profile `json:"author,omitempty"`
}
