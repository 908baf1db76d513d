package models

import "time"

// Comment is a remark attached to a suggestion. Comments are immutable once
// created; attribution fields are snapshotted from the author's profile at
// creation time.
type Comment struct {
	ID           int       `json:"id"`
	SuggestionID int       `json:"suggestion_id"`
	CreatedBy    string    `json:"created_by"`
	Image        string    `json:"image"`
	Text         string    `json:"text"`
	Created      time.Time `json:"created"`
}

// Like records that an actor has liked a suggestion. At most one Like exists
// per (SuggestionID, AuthorID) pair.
type Like struct {
	ID           int `json:"id"`
	SuggestionID int `json:"suggestion_id"`
	AuthorID     int `json:"author_id"`
}
