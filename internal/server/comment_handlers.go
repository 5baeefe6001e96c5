package server

import (
	"gaethering/internal/models"
	"gaethering/internal/service"

	"github.com/gofiber/fiber/v2"
)

// WriteComment adds a comment to a post.
func (s *Server) WriteComment(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	input := service.WriteCommentInput{
		MemberID: memberID,
		PostID:   postID,
	}
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.WriteComment(c.UserContext(), input)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	comment.IsOwner = true
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments returns one keyset page of comments on a post, newest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	cursor := parseCursor(c, "lastCommentId")
	currentMemberID, _ := s.optionalMemberID(c)

	page, err := s.commentService.GetComments(c.UserContext(), service.ListCommentsInput{
		PostID:          postID,
		LastCommentID:   cursor.LastID,
		Size:            cursor.Size,
		CurrentMemberID: currentMemberID,
	})
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(page)
}

// UpdateComment edits the caller's own comment.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	input := service.UpdateCommentInput{
		MemberID:  memberID,
		PostID:    postID,
		CommentID: commentID,
	}
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), input)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment removes the caller's own comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), memberID, postID, commentID); err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
