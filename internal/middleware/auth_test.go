package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func generateTestToken(t *testing.T, memberID uint, email string, exp time.Duration, mutate func(jwt.MapClaims)) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(memberID), 10),
		"email": email,
		"iss":   TokenIssuer,
		"aud":   TokenAudience,
		"jti":   uuid.NewString(),
		"exp":   time.Now().Add(exp).Unix(),
		"iat":   time.Now().Unix(),
	}
	if mutate != nil {
		mutate(claims)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, nil), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"memberID": c.Locals("memberID"),
			"email":    c.Locals("email"),
		})
	})

	tests := []struct {
		name             string
		authHeader       string
		expectedStatus   int
		expectedMemberID uint
	}{
		{
			name:             "Happy Path",
			authHeader:       "Bearer " + generateTestToken(t, 123, "test@example.com", time.Hour, nil),
			expectedStatus:   http.StatusOK,
			expectedMemberID: 123,
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateTestToken(t, 123, "test@example.com", -time.Hour, nil),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong Issuer",
			authHeader: "Bearer " + generateTestToken(t, 123, "test@example.com", time.Hour, func(c jwt.MapClaims) {
				c["iss"] = "someone-else"
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong Audience",
			authHeader: "Bearer " + generateTestToken(t, 123, "test@example.com", time.Hour, func(c jwt.MapClaims) {
				c["aud"] = "other-client"
			}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Missing Email Claim",
			authHeader: "Bearer " + generateTestToken(t, 123, "test@example.com", time.Hour, func(c jwt.MapClaims) {
				delete(c, "email")
			}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
					assert.Equal(t, float64(tt.expectedMemberID), body["memberID"])
					assert.Equal(t, "test@example.com", body["email"])
				}
			}
		})
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, rdb), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	jti := uuid.NewString()
	token := generateTestToken(t, 1, "test@example.com", time.Hour, func(c jwt.MapClaims) {
		c["jti"] = jti
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// blacklist the jti and try again
	require.NoError(t, rdb.Set(context.Background(), "blacklist:"+jti, "1", time.Hour).Err())

	resp, err = app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestParseClaims_WrongSecret(t *testing.T) {
	token := generateTestToken(t, 1, "test@example.com", time.Hour, nil)

	_, err := ParseClaims(token, "a-completely-different-secret")
	assert.Error(t, err)
}

func TestIdentityFromClaims(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		memberID, email, err := IdentityFromClaims(jwt.MapClaims{
			"sub":   "42",
			"email": "test@example.com",
		})
		require.NoError(t, err)
		assert.EqualValues(t, 42, memberID)
		assert.Equal(t, "test@example.com", email)
	})

	t.Run("Non-numeric Subject", func(t *testing.T) {
		_, _, err := IdentityFromClaims(jwt.MapClaims{
			"sub":   "not-a-number",
			"email": "test@example.com",
		})
		assert.Error(t, err)
	})

	t.Run("Missing Email", func(t *testing.T) {
		_, _, err := IdentityFromClaims(jwt.MapClaims{"sub": "42"})
		assert.Error(t, err)
	})
}
