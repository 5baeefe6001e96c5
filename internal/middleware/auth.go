package middleware

import (
	"context"
	"strconv"
	"strings"

	"gaethering/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Token issuer/audience claims checked by the auth middleware.
const (
	TokenIssuer   = "gaethering-api"
	TokenAudience = "gaethering-client"
)

// AuthRequired returns middleware that validates the bearer token in the
// Authorization header and stores the caller's member ID and email in both
// Fiber locals and the request context. Tokens whose jti has been
// blacklisted (logout) are rejected.
func AuthRequired(secret string, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := ParseClaims(tokenString, secret)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		memberID, email, err := IdentityFromClaims(claims)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Check jti for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" && rdb != nil {
			blacklisted, err := rdb.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && blacklisted > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("memberID", memberID)
		c.Locals("email", email)
		ctx := context.WithValue(c.UserContext(), MemberIDKey, memberID)
		ctx = context.WithValue(ctx, EmailKey, email)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// ParseClaims validates the signature, issuer and audience of a token and
// returns its claims.
func ParseClaims(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, ok := claims["iss"].(string); !ok || issuer != TokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, ok := claims["aud"].(string); !ok || audience != TokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	return claims, nil
}

// IdentityFromClaims extracts the member ID (subject) and email claims.
func IdentityFromClaims(claims jwt.MapClaims) (uint, string, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", models.NewUnauthorizedError("Invalid subject claim")
	}
	memberID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", models.NewUnauthorizedError("Invalid member ID in token")
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return 0, "", models.NewUnauthorizedError("Missing email claim")
	}

	return uint(memberID), email, nil
}
