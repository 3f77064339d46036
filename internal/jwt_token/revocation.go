package jwttoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "gatepass:revoked_jti:"

// RevocationList records revoked token IDs in Redis. Entries expire with the
// token they revoke, so the list never outgrows the set of live tokens.
type RevocationList struct {
	client redis.Cmdable
}

func NewRevocationList(client redis.Cmdable) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke marks jti as revoked until expiresAt. Tokens that already expired
// need no entry.
func (l *RevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("revoke: empty jti")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke jti: %w", err)
	}
	return nil
}

// IsTokenRevoked implements the auth middleware's revocation checker.
func (l *RevocationList) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	err := l.client.Get(ctx, revokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked jti: %w", err)
	}
	return true, nil
}
