package server

import (
	"gaethering/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleHeart hearts the post, or removes the caller's heart if one exists.
func (s *Server) ToggleHeart(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	result, err := s.heartService.Toggle(c.UserContext(), memberID, postID)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(result)
}
