package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kontobank/kontobank/internal/model"
)

// Cache key prefixes and TTLs.
const (
	sessionKeyPrefix = "session:"

	// revokedField marks a session hash as a revocation tombstone.
	revokedField = "revoked_at"

	// MaxSessionTTL caps how long a session or its tombstone stays cached,
	// so a revocation that missed the cache is bounded in effect.
	MaxSessionTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss      = errors.New("cache miss")
	ErrSessionRevoked = errors.New("session revoked")
)

// setSessionScript writes a session hash unless a tombstone is already there.
// KEYS[1] is the session key, ARGV[1] the TTL in milliseconds and ARGV[2:]
// the id, user_id, created_at and expires_at fields.
var setSessionScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], "revoked_at") == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "id", ARGV[2], "user_id", ARGV[3], "created_at", ARGV[4], "expires_at", ARGV[5])
redis.call("PEXPIRE", KEYS[1], ARGV[1])
return 1
`)

func sessionKey(tokenHash string) string {
	return sessionKeyPrefix + tokenHash
}

// GetSession retrieves a cached session by token hash.
// Returns ErrSessionRevoked for a tombstone, and ErrCacheMiss if not found or
// the entry is unreadable.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	var cached model.CachedSession
	cmd := c.client.HGetAll(ctx, sessionKey(tokenHash))
	if err := cmd.Err(); err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(cmd.Val()) == 0 {
		return nil, ErrCacheMiss
	}
	if _, ok := cmd.Val()[revokedField]; ok {
		return nil, ErrSessionRevoked
	}
	if err := cmd.Scan(&cached); err != nil {
		return nil, ErrCacheMiss
	}

	session := cached.ToSession(tokenHash)
	if session == nil {
		// Corrupted entry - drop it and treat as miss
		c.client.Del(ctx, sessionKey(tokenHash))
		return nil, ErrCacheMiss
	}

	return session, nil
}

// SetSession caches an active session until the earlier of MaxSessionTTL
// and its expiry. Sessions that are already unusable are not cached, and a
// tombstone left by RevokeSession is never overwritten.
func (c *Cache) SetSession(ctx context.Context, session *model.Session, now time.Time) error {
	if !session.IsActiveAt(now) {
		return nil
	}

	ttl := MaxSessionTTL
	if remaining := session.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl < time.Millisecond {
		return nil
	}

	cached := session.ToCachedSession()
	keys := []string{sessionKey(session.TokenHash)}
	err := setSessionScript.Run(ctx, c.client, keys,
		ttl.Milliseconds(), cached.ID, cached.UserID, cached.CreatedAt, cached.ExpiresAt).Err()
	if err != nil {
		return fmt.Errorf("redis cache session failed: %w", err)
	}

	return nil
}

// RevokeSession replaces any cached copy of the session with a tombstone
// that lives for MaxSessionTTL. Used on logout.
func (c *Cache) RevokeSession(ctx context.Context, tokenHash string, at time.Time) error {
	key := sessionKey(tokenHash)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, revokedField, strconv.FormatInt(at.UnixNano(), 10))
	pipe.Expire(ctx, key, MaxSessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis revoke session failed: %w", err)
	}

	return nil
}
