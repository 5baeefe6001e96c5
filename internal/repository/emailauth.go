package repository

import (
	"context"
	"errors"
	"time"

	"gaethering/internal/cache"
	"gaethering/internal/models"

	"github.com/redis/go-redis/v9"
)

// EmailAuthRepository stores short-lived email verification codes in redis.
type EmailAuthRepository interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) error
}

type emailAuthRepository struct {
	rdb *redis.Client
}

// NewEmailAuthRepository creates a redis-backed email auth code store
func NewEmailAuthRepository(rdb *redis.Client) EmailAuthRepository {
	return &emailAuthRepository{rdb: rdb}
}

// Save stores the code keyed by itself with the issuing address as value.
// Reissuing adds a fresh code; earlier ones age out with their TTL.
func (r *emailAuthRepository) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return r.rdb.Set(ctx, cache.AuthCodeKey(code), email, ttl).Err()
}

// Consume claims the code with a single GETDEL, so a valid code is redeemable
// exactly once and a wrong guess cannot discard one still outstanding. The
// code must have been issued to the caller's address; expired and never-issued
// codes are indistinguishable from wrong ones.
func (r *emailAuthRepository) Consume(ctx context.Context, email, code string) error {
	stored, err := r.rdb.GetDel(ctx, cache.AuthCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return models.NewInvalidAuthCodeError()
	}
	if err != nil {
		return err
	}
	if stored != email {
		return models.NewInvalidAuthCodeError()
	}
	return nil
}
