package repository

import (
	"context"
	"fmt"

	"kominn/internal/models"
	"kominn/internal/store"
)

// LikeRepository manages like records. The backing store enforces no unique
// constraint on (SuggestionId, AuthorId); the service layer serializes the
// toggle per pair to keep the at-most-one invariant.
type LikeRepository interface {
	Find(ctx context.Context, suggestionID, authorID int) (*models.Like, error)
	Create(ctx context.Context, suggestionID, authorID int) (*models.Like, error)
	Delete(ctx context.Context, id int) error
}

type likeRepository struct {
	store *store.Client
}

// NewLikeRepository creates a like repository over the given store client.
func NewLikeRepository(s *store.Client) LikeRepository {
	return &likeRepository{store: s}
}

type likeRow struct {
	ID           int `json:"Id"`
	SuggestionID int `json:"SuggestionId"`
	AuthorID     int `json:"AuthorId"`
}

// Find returns the actor's like record for a suggestion, or nil when none
// exists.
func (r *likeRepository) Find(ctx context.Context, suggestionID, authorID int) (*models.Like, error) {
	var rows []likeRow
	err := r.store.Items(ctx, ListLikes, store.Query{
		Filter: fmt.Sprintf("(SuggestionId eq %d and AuthorId eq %d)", suggestionID, authorID),
		Select: []string{"Id", "SuggestionId", "AuthorId"},
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &models.Like{ID: row.ID, SuggestionID: row.SuggestionID, AuthorID: row.AuthorID}, nil
}

func (r *likeRepository) Create(ctx context.Context, suggestionID, authorID int) (*models.Like, error) {
	id, err := r.store.Create(ctx, ListLikes, map[string]any{
		"SuggestionId": suggestionID,
		"AuthorId":     authorID,
	})
	if err != nil {
		return nil, err
	}
	return &models.Like{ID: id, SuggestionID: suggestionID, AuthorID: authorID}, nil
}

func (r *likeRepository) Delete(ctx context.Context, id int) error {
	return r.store.Delete(ctx, ListLikes, id)
}
