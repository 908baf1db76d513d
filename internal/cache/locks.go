package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Counter-bearing records are read-modify-written with no compare-and-swap in
// the backing store, so every counter mutation for a record must pass through
// WithRecordLock. The lock is cross-process when Redis is available and falls
// back to an in-process keyed mutex otherwise.

const (
	lockTTL      = 10 * time.Second
	lockWait     = 5 * time.Second
	lockPollStep = 25 * time.Millisecond
)

// ErrLockTimeout is returned when a record lock could not be acquired within
// the wait window.
var ErrLockTimeout = errors.New("cache: record lock wait timed out")

// releaseScript deletes the lock only if it is still held by the owner token.
var releaseScript = redis.NewScript(
	`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) end return 0`)

// SuggestionLockKey serializes counter mutations for one suggestion record.
func SuggestionLockKey(suggestionID int) string {
	return fmt.Sprintf("lock:suggestion:%d", suggestionID)
}

// ToggleLockKey serializes the like toggle for one (suggestion, actor) pair.
func ToggleLockKey(suggestionID, actorID int) string {
	return fmt.Sprintf("lock:like:%d:%d", suggestionID, actorID)
}

// PublishLockKey serializes the publish flow for one suggestion record.
func PublishLockKey(suggestionID int) string {
	return fmt.Sprintf("lock:publish:%d", suggestionID)
}

// WithRecordLock runs fn while holding the named lock.
func WithRecordLock(ctx context.Context, key string, fn func() error) error {
	if client == nil {
		return withLocalLock(key, fn)
	}

	token := uuid.NewString()
	deadline := time.Now().Add(lockWait)
	for {
		ok, err := client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			// Redis is unhealthy; degrade to process-local serialization.
			return withLocalLock(key, fn)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollStep):
		}
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, client, []string{key}, token).Err()
	}()

	return fn()
}

var (
	localMu    sync.Mutex
	localLocks = map[string]*sync.Mutex{}
)

func withLocalLock(key string, fn func() error) error {
	localMu.Lock()
	mu, ok := localLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		localLocks[key] = mu
	}
	localMu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	return fn()
}
