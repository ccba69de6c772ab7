package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// SessionRegistry tracks live session ids in redis so logout can revoke them.
type SessionRegistry struct {
	client *redisv9.Client
	prefix string
}

func NewSessionRegistry(client *redisv9.Client, prefix string) *SessionRegistry {
	if prefix == "" {
		prefix = "taskmanager"
	}
	return &SessionRegistry{
		client: client,
		prefix: prefix,
	}
}

func (r *SessionRegistry) Register(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("register session failed: ttl must be positive")
	}
	value := strconv.FormatUint(uint64(userID), 10)
	if err := r.client.Set(ctx, r.sessionKey(sessionID), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

// Lookup returns the user id registered for the session, or false when it is unknown or expired.
func (r *SessionRegistry) Lookup(ctx context.Context, sessionID string) (uint, bool, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err == redisv9.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get session failed: %w", err)
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decode cached session failed: %w", err)
	}
	return uint(userID), true, nil
}

func (r *SessionRegistry) Remove(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session failed: %w", err)
	}
	return nil
}

func (r *SessionRegistry) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}
