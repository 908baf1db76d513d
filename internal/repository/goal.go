package repository

import (
	"context"

	"kominn/internal/models"
	"kominn/internal/store"
)

// GoalRepository resolves sustainability goals with their icon URLs.
type GoalRepository interface {
	List(ctx context.Context) ([]models.SustainabilityGoal, error)
}

type goalRepository struct {
	store *store.Client
}

// NewGoalRepository creates a goal repository over the given store client.
func NewGoalRepository(s *store.Client) GoalRepository {
	return &goalRepository{store: s}
}

type iconRow struct {
	ID   int `json:"Id"`
	File struct {
		ServerRelativeURL string `json:"ServerRelativeUrl"`
	} `json:"File"`
}

type goalRow struct {
	ID     int    `json:"Id"`
	Title  string `json:"Title"`
	IconID int    `json:"IconId"`
}

// List fetches all icon assets, then all goal rows, and joins them in memory
// keyed by icon id. Goals whose icon reference dangles get an empty ImageSrc.
// Both collections are small and bounded; every call re-fetches them in full.
func (r *goalRepository) List(ctx context.Context) ([]models.SustainabilityGoal, error) {
	var icons []iconRow
	err := r.store.Items(ctx, ListIcons, store.Query{
		Select: []string{"Id", "File/ServerRelativeUrl"},
		Expand: []string{"File"},
	}, &icons)
	if err != nil {
		return nil, err
	}

	iconByID := make(map[int]string, len(icons))
	for _, icon := range icons {
		if _, seen := iconByID[icon.ID]; !seen {
			iconByID[icon.ID] = icon.File.ServerRelativeURL
		}
	}

	var rows []goalRow
	err = r.store.Items(ctx, ListGoals, store.Query{
		Select: []string{"Title", "Id", "IconId"},
	}, &rows)
	if err != nil {
		return nil, err
	}

	goals := make([]models.SustainabilityGoal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, models.SustainabilityGoal{
			ID:       row.ID,
			Title:    row.Title,
			ImageSrc: iconByID[row.IconID],
		})
	}
	return goals, nil
}
