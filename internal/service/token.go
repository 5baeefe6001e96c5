package service

import (
	"context"
	"fmt"
	"time"

	"gaethering/internal/cache"
	"gaethering/internal/middleware"
	"gaethering/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 14 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair is the sign-in result returned to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func issueToken(secret string, memberID uint, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   middleware.TokenIssuer,
		"aud":   middleware.TokenAudience,
		"sub":   fmt.Sprintf("%d", memberID),
		"email": email,
		"type":  tokenType,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func issueTokenPair(secret string, memberID uint, email string) (*TokenPair, error) {
	access, err := issueToken(secret, memberID, email, tokenTypeAccess, AccessTokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, err := issueToken(secret, memberID, email, tokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// blacklistToken marks a token's jti as revoked for the remainder of its
// lifetime. Missing jti or exp means the token cannot be revoked individually;
// those are rejected at issue time, so this is best effort.
func blacklistToken(ctx context.Context, rdb *redis.Client, claims jwt.MapClaims) error {
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil
	}
	ttl := RefreshTokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, cache.BlacklistKey(jti), "1", ttl).Err()
}
