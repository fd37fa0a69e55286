package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no refresh token is stored for the user.
var ErrSessionNotFound = errors.New("session not found")

// ErrTokenMismatch is returned when the presented token is not the stored
// one: a stale or already-rotated token (reuse detection).
var ErrTokenMismatch = errors.New("refresh token mismatch")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// rotateLua atomically replaces the stored refresh token, but only when the
// currently stored value equals the presented one. Read-then-write from Go
// would let two concurrent refreshes both pass the reuse check; the script
// guarantees a single winner.
//
//	KEYS[1] = refresh key
//	ARGV[1] = expected current token
//	ARGV[2] = replacement token
//	ARGV[3] = TTL seconds
var rotateLua = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
  return {err='not_found'}
end
if cur ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', tonumber(ARGV[3]))
return 1
`)

// Store is the Redis-backed refresh-token session store.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store]. An empty prefix defaults to "tshop".
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "tshop"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":refresh:" + userID
}

// Put stores the user's current refresh token with the given TTL. The write
// is a single SET-with-expiry so a crash can never leave an unbounded key.
func (s *Store) Put(ctx context.Context, userID, tokenStr string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(userID), tokenStr, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the currently stored refresh token for the user.
func (s *Store) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.redis.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}

// Delete revokes the user's session. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Rotate atomically swaps the stored token from expected to next and resets
// the TTL. Returns [ErrSessionNotFound] when no session exists and
// [ErrTokenMismatch] when expected is no longer the stored value.
func (s *Store) Rotate(ctx context.Context, userID, expected, next string, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	err := rotateLua.Run(ctx, s.redis, []string{s.key(userID)}, expected, next, seconds).Err()
	if err == nil {
		return nil
	}

	switch err.Error() {
	case "not_found":
		return ErrSessionNotFound
	case "mismatch":
		return ErrTokenMismatch
	default:
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
}
