// Package service implements the application operations over the repository
// and client layers. Every operation is a strictly sequential chain of store
// round trips; nothing here fans out in parallel.
package service

import (
	"context"

	"kominn/internal/models"

	"kominn/internal/induct"
)

// Actor identifies the caller of an operation: the store identity plus the
// directory login used for profile resolution. It is passed explicitly into
// every operation that needs it; nothing reads ambient request state.
type Actor struct {
	ID    int
	Login string
}

// Directory is the profile directory surface the services depend on.
type Directory interface {
	GetUserProfile(ctx context.Context, login string) (*models.Person, error)
	EnsureUser(ctx context.Context, login string) (id int, name string, err error)
}

// IdeaAPI is the external acceptance surface the publish bridge depends on.
type IdeaAPI interface {
	CreateIdea(ctx context.Context, clientID string, idea induct.Idea) (string, error)
}
