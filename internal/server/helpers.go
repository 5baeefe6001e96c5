package server

import (
	"errors"
	"strings"
	"unicode"

	"gaethering/internal/middleware"
	"gaethering/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Cursor holds parsed keyset pagination query parameters.
type Cursor struct {
	LastID uint
	Size   int
}

// parseCursor extracts the size and last-id query parameters. lastParam names
// the id parameter ("lastPostId" or "lastCommentId"); absent or non-positive
// values mean "from the newest".
func parseCursor(c *fiber.Ctx, lastParam string) Cursor {
	size := c.QueryInt("size", 0)
	if size < 0 {
		size = 0
	}
	last := c.QueryInt(lastParam, 0)
	if last < 0 {
		last = 0
	}
	return Cursor{LastID: uint(last), Size: size}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "memberId" -> "member ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// optionalMemberID attempts to extract the member ID from the Authorization
// header but does not enforce it. Used by public read endpoints that
// personalize their response (hasHeart, isOwner) when a token is present.
func (s *Server) optionalMemberID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	claims, err := middleware.ParseClaims(parts[1], s.config.JWTSecret)
	if err != nil {
		return 0, false
	}
	memberID, _, err := middleware.IdentityFromClaims(claims)
	if err != nil {
		return 0, false
	}
	return memberID, true
}

// bearerToken returns the raw bearer token from the Authorization header.
func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
