package service

import (
	"context"

	"kominn/internal/cache"
	"kominn/internal/models"
	"kominn/internal/repository"
)

// LikeService flips an actor's like state on a suggestion and keeps the
// denormalized like counter in step.
type LikeService struct {
	likes       repository.LikeRepository
	suggestions repository.SuggestionRepository
}

// NewLikeService creates a like service.
func NewLikeService(likes repository.LikeRepository, suggestions repository.SuggestionRepository) *LikeService {
	return &LikeService{likes: likes, suggestions: suggestions}
}

// Toggle creates or removes the actor's like record and adjusts the counter
// by the matching delta, returning the suggestion with its updated count.
// The existence check and the counter adjustment are independent round trips,
// so the whole toggle is serialized per (suggestion, actor) pair and the
// counter write additionally holds the suggestion record lock. Two toggles
// in succession return the suggestion to its original state.
func (s *LikeService) Toggle(ctx context.Context, actor Actor, suggestion *models.Suggestion) (*models.Suggestion, error) {
	updated := *suggestion

	err := cache.WithRecordLock(ctx, cache.ToggleLockKey(suggestion.ID, actor.ID), func() error {
		existing, err := s.likes.Find(ctx, suggestion.ID, actor.ID)
		if err != nil {
			return err
		}

		delta := 1
		if existing == nil {
			if _, err := s.likes.Create(ctx, suggestion.ID, actor.ID); err != nil {
				return err
			}
		} else {
			if err := s.likes.Delete(ctx, existing.ID); err != nil {
				return err
			}
			delta = -1
		}

		return cache.WithRecordLock(ctx, cache.SuggestionLockKey(suggestion.ID), func() error {
			likes, err := s.suggestions.AdjustLikes(ctx, suggestion.ID, delta)
			if err != nil {
				return err
			}
			updated.Likes = likes
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
