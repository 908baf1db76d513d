package service_test

import (
	"context"
	"testing"

	"kominn/internal/cache"
	"kominn/internal/repository"
	"kominn/internal/service"
	"kominn/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLikeEnv(t *testing.T) (*testutil.FakeStore, repository.SuggestionRepository, *service.LikeService) {
	t.Helper()
	cache.Reset()
	fake := testutil.NewFakeStore(t)
	client := fake.Client()
	goals := repository.NewGoalRepository(client)
	suggestions := repository.NewSuggestionRepository(client, goals)
	likes := repository.NewLikeRepository(client)
	return fake, suggestions, service.NewLikeService(likes, suggestions)
}

func TestToggleRoundTrip(t *testing.T) {
	fake, suggestions, svc := newLikeEnv(t)
	fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Id": 5, "Status": "Accepted", "Likes": 3}),
	)
	ctx := context.Background()
	actor := service.Actor{ID: 77}

	suggestion, err := suggestions.GetByID(ctx, 5)
	require.NoError(t, err)

	// First toggle likes.
	updated, err := svc.Toggle(ctx, actor, suggestion)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Likes)
	require.Len(t, fake.Rows(repository.ListLikes), 1)

	// Second toggle unlikes and restores the original count.
	updated, err = svc.Toggle(ctx, actor, updated)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Likes)
	assert.Empty(t, fake.Rows(repository.ListLikes))
}

func TestToggleIsPerActor(t *testing.T) {
	fake, suggestions, svc := newLikeEnv(t)
	fake.Seed(repository.ListSuggestions,
		testutil.SuggestionRow(map[string]any{"Id": 6, "Status": "Accepted", "Likes": 0}),
	)
	ctx := context.Background()

	suggestion, err := suggestions.GetByID(ctx, 6)
	require.NoError(t, err)

	first, err := svc.Toggle(ctx, service.Actor{ID: 1}, suggestion)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Likes)

	second, err := svc.Toggle(ctx, service.Actor{ID: 2}, suggestion)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Likes)

	// Actor 1 unliking leaves actor 2's like in place.
	third, err := svc.Toggle(ctx, service.Actor{ID: 1}, first)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Likes)
	require.Len(t, fake.Rows(repository.ListLikes), 1)
}
