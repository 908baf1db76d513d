package service

import (
	"context"

	"kominn/internal/cache"
	"kominn/internal/models"
	"kominn/internal/repository"
)

// CommentService lists and appends comments and maintains the denormalized
// comment counter on the parent suggestion.
type CommentService struct {
	comments    repository.CommentRepository
	suggestions repository.SuggestionRepository
	dir         Directory
}

// NewCommentService creates a comment service.
func NewCommentService(comments repository.CommentRepository, suggestions repository.SuggestionRepository, dir Directory) *CommentService {
	return &CommentService{comments: comments, suggestions: suggestions, dir: dir}
}

// List returns a suggestion's comments, newest first.
func (s *CommentService) List(ctx context.Context, suggestionID int) ([]*models.Comment, error) {
	return s.comments.ListBySuggestion(ctx, suggestionID)
}

// Add resolves the actor's profile for attribution, creates the comment, and
// increments the suggestion's comment counter. The counter adjustment is a
// read-then-write pair against the store, so it runs under the suggestion's
// record lock; without it, concurrent writers lose updates.
func (s *CommentService) Add(ctx context.Context, actor Actor, suggestionID int, text string) (*models.Comment, error) {
	author, err := s.dir.GetUserProfile(ctx, actor.Login)
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(ctx, &models.Comment{
		SuggestionID: suggestionID,
		CreatedBy:    author.Name,
		Image:        author.ProfileImageURL,
		Text:         text,
	})
	if err != nil {
		return nil, err
	}

	err = cache.WithRecordLock(ctx, cache.SuggestionLockKey(suggestionID), func() error {
		_, adjustErr := s.suggestions.AdjustComments(ctx, suggestionID, 1)
		return adjustErr
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}
