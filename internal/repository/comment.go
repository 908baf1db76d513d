package repository

import (
	"context"
	"fmt"
	"time"

	"kominn/internal/models"
	"kominn/internal/store"
)

// CommentRepository reads and appends suggestion comments. Comments are
// immutable once created; the comment counter on the parent suggestion is
// maintained separately by the service layer.
type CommentRepository interface {
	ListBySuggestion(ctx context.Context, suggestionID int) ([]*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
}

type commentRepository struct {
	store *store.Client
}

// NewCommentRepository creates a comment repository over the given store client.
func NewCommentRepository(s *store.Client) CommentRepository {
	return &commentRepository{store: s}
}

type commentRow struct {
	ID           int       `json:"Id"`
	Title        string    `json:"Title"`
	Text         string    `json:"Text"`
	Image        string    `json:"Image"`
	SuggestionID int       `json:"SuggestionId"`
	Created      time.Time `json:"Created"`
}

func (r *commentRepository) ListBySuggestion(ctx context.Context, suggestionID int) ([]*models.Comment, error) {
	var rows []commentRow
	err := r.store.Items(ctx, ListComments, store.Query{
		Filter:  fmt.Sprintf("SuggestionId eq %d", suggestionID),
		OrderBy: "Created desc",
	}, &rows)
	if err != nil {
		return nil, err
	}

	comments := make([]*models.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, &models.Comment{
			ID:           row.ID,
			SuggestionID: row.SuggestionID,
			CreatedBy:    row.Title,
			Image:        row.Image,
			Text:         row.Text,
			Created:      row.Created,
		})
	}
	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	id, err := r.store.Create(ctx, ListComments, map[string]any{
		"Title":        comment.CreatedBy,
		"Text":         comment.Text,
		"Image":        comment.Image,
		"SuggestionId": comment.SuggestionID,
	})
	if err != nil {
		return nil, err
	}
	created := *comment
	created.ID = id
	created.Created = time.Now().UTC()
	return &created, nil
}
