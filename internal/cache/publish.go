package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"kominn/internal/observability"
)

// The published-id guard closes the publish failure window: when the external
// POST succeeds but the local flag write fails, the guard remembers the
// external id so a retry never re-posts the same suggestion.

func publishedKey(suggestionID int) string {
	return fmt.Sprintf("published:%d", suggestionID)
}

var (
	localPublishedMu sync.RWMutex
	localPublished   = map[string]string{}
)

// MarkPublished records the external id assigned to a suggestion. The key has
// no expiry: the SentToExternal flag is monotonic. A failed Redis write falls
// back to the in-process map so the guard survives at least within this
// process.
func MarkPublished(ctx context.Context, suggestionID int, externalID string) {
	key := publishedKey(suggestionID)
	if client != nil {
		err := client.Set(ctx, key, externalID, 0).Err()
		if err == nil {
			return
		}
		observability.RedisErrors.WithLabelValues("set").Inc()
		slog.ErrorContext(ctx, "published guard write failed, falling back to local map",
			"suggestion_id", suggestionID, "error", err)
	}
	localPublishedMu.Lock()
	localPublished[key] = externalID
	localPublishedMu.Unlock()
}

// PublishedID returns the external id recorded for a suggestion, if any. The
// local map is consulted after a Redis miss in case the write had fallen back.
func PublishedID(ctx context.Context, suggestionID int) (string, bool) {
	key := publishedKey(suggestionID)
	if client != nil {
		if id, err := client.Get(ctx, key).Result(); err == nil && id != "" {
			return id, true
		}
	}
	localPublishedMu.RLock()
	id, ok := localPublished[key]
	localPublishedMu.RUnlock()
	return id, ok
}

// ResetPublished clears the in-process published guard. Test helper.
func ResetPublished() {
	localPublishedMu.Lock()
	localPublished = map[string]string{}
	localPublishedMu.Unlock()
}
