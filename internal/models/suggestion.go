// Package models defines the domain model and error types for the application.
package models

import (
	"time"
)

// SuggestionRef is a lightweight reference to another suggestion, used for
// the "inspired by" lookup set.
type SuggestionRef struct {
	ID    int    `json:"id"`
	Title string `json:"title,omitempty"`
}

// Suggestion is an employee improvement suggestion as projected from the
// backing store. Instances are transient; they are rebuilt on every query and
// never cached between calls.
type Suggestion struct {
	ID                  int                  `json:"id"`
	Title               string               `json:"title"`
	Summary             string               `json:"summary"`
	Challenges          string               `json:"challenges"`
	SuggestedSolution   string               `json:"suggested_solution"`
	Location            string               `json:"location"`
	UsefulForOthers     string               `json:"useful_for_others"`
	UsefulnessType      string               `json:"usefulness_type"`
	Status              Status               `json:"status"`
	Likes               int                  `json:"likes"`
	NumberOfComments    int                  `json:"number_of_comments"`
	Created             time.Time            `json:"created"`
	Image               string               `json:"image"`
	Submitter           Person               `json:"submitter"`
	InspiredBy          []SuggestionRef      `json:"inspired_by,omitempty"`
	Tags                []string             `json:"tags,omitempty"`
	SustainabilityGoals []SustainabilityGoal `json:"sustainability_goals,omitempty"`
	CompetitionRef      string               `json:"competition_ref,omitempty"`
	IsPast              bool                 `json:"is_past"`
	SentToExternal      bool                 `json:"sent_to_external"`
}
