package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	blacklistPrefix  = "blacklist:"
	refreshSetPrefix = "refresh_tokens:"
)

// TokenRepository is the Redis-backed revocation store. It owns all
// cross-request token state: the access-token blacklist and the per-user sets
// of honored refresh tokens. Correctness under concurrent requests relies on
// Redis single-key atomicity; no operation here touches more than one key.
type TokenRepository struct {
	client     *redis.Client
	refreshTTL time.Duration
	grace      time.Duration
}

// NewTokenRepository constructs the revocation store handle. refreshTTL is
// the refresh-token lifetime; grace extends the set TTL past it so an entry
// never vanishes before the token it tracks has expired.
func NewTokenRepository(client *redis.Client, refreshTTL, grace time.Duration) *TokenRepository {
	return &TokenRepository{client: client, refreshTTL: refreshTTL, grace: grace}
}

// Blacklist marks an access token as revoked for ttl. Re-blacklisting resets
// the TTL, last write wins. The TTL is floored at one second so an entry is
// never created already expired.
func (r *TokenRepository) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis blacklist token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether the access token has been revoked.
func (r *TokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("redis check blacklist: %w", err)
	}
	return n == 1, nil
}

// AddRefresh records a refresh token as honored for the user. Tokens from
// concurrent logins accumulate, one per device. Every insert resets the set
// TTL to the refresh lifetime plus grace.
func (r *TokenRepository) AddRefresh(ctx context.Context, userID int64, token string) error {
	key := refreshSetKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, token)
		pipe.Expire(ctx, key, r.refreshTTL+r.grace)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis add refresh token: %w", err)
	}
	return nil
}

// IsValidRefresh reports whether the refresh token is currently honored for
// the user. A syntactically valid token absent from the set is not honored.
func (r *TokenRepository) IsValidRefresh(ctx context.Context, userID int64, token string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, refreshSetKey(userID), token).Result()
	if err != nil {
		return false, fmt.Errorf("redis check refresh token: %w", err)
	}
	return ok, nil
}

// RevokeRefresh removes a single refresh token from the user's set.
// Revoking an absent token is not an error.
func (r *TokenRepository) RevokeRefresh(ctx context.Context, userID int64, token string) error {
	if err := r.client.SRem(ctx, refreshSetKey(userID), token).Err(); err != nil {
		return fmt.Errorf("redis revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefresh deletes the user's entire refresh-token set, logging out
// every device. Deleting an already-empty set is not an error.
func (r *TokenRepository) RevokeAllRefresh(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, refreshSetKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis revoke all refresh tokens: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *TokenRepository) Close() error {
	return r.client.Close()
}

func refreshSetKey(userID int64) string {
	return refreshSetPrefix + strconv.FormatInt(userID, 10)
}
