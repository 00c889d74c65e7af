package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRevocationUnavailable is returned by Revoke when no Redis client is configured.
var ErrRevocationUnavailable = errors.New("token revocation store unavailable")

// Revocations records revoked token ids until their natural expiry.
type Revocations struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRevocations returns a revocation list backed by rdb, which may be nil.
func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb, now: time.Now}
}

// Revoke marks jti revoked until expiresAt. Tokens already expired need no entry.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if r == nil || r.rdb == nil {
		return ErrRevocationUnavailable
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, RevokedTokenKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked. Without Redis nothing is revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
