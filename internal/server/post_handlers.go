package server

import (
	"encoding/json"

	"gaethering/internal/featureflags"
	"gaethering/internal/models"
	"gaethering/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCategories lists the board categories.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.UserContext())
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// WritePost creates a post under a category. The request is
// multipart/form-data with a "data" part (JSON title/content) and any number
// of "images" parts; the first image becomes the representative one.
func (s *Server) WritePost(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	categoryID, err := s.parseID(c, "categoryId")
	if err != nil {
		return nil
	}

	input := service.WritePostInput{
		MemberID:   memberID,
		CategoryID: categoryID,
	}

	form, formErr := c.MultipartForm()
	if formErr == nil && form != nil {
		values := form.Value["data"]
		if len(values) == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Missing data part"))
		}
		if err := json.Unmarshal([]byte(values[0]), &input); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid data part"))
		}

		for _, fh := range form.File["images"] {
			content, contentType, err := readFormFile(fh)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Could not read image part"))
			}
			input.Images = append(input.Images, service.UploadedImage{
				Content:     content,
				ContentType: contentType,
			})
		}
	} else if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.WritePost(c.UserContext(), input)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts returns a keyset page of posts in a category.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	categoryID, err := s.parseID(c, "categoryId")
	if err != nil {
		return nil
	}
	cursor := parseCursor(c, "lastPostId")
	currentMemberID, _ := s.optionalMemberID(c)

	page, err := s.postService.GetPosts(c.UserContext(), service.ListPostsInput{
		CategoryID:      categoryID,
		LastPostID:      cursor.LastID,
		Size:            cursor.Size,
		CurrentMemberID: currentMemberID,
	})
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(page)
}

// GetOnePost returns the post detail and counts the view.
func (s *Server) GetOnePost(c *fiber.Ctx) error {
	categoryID, err := s.parseID(c, "categoryId")
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	currentMemberID, _ := s.optionalMemberID(c)

	post, err := s.postService.GetOnePost(c.UserContext(), categoryID, postID, currentMemberID)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost replaces the title and content of the caller's own post.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	input := service.UpdatePostInput{
		MemberID: memberID,
		PostID:   postID,
	}
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), input)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes the caller's own post with all its children.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), memberID, postID); err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// UploadPostImage attaches an additional image to an existing post.
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if !s.featureFlags.EnabledOrMissing(featureflags.FlagPostImageUpload, memberID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewValidationError("Image uploads are currently disabled"))
	}

	fh, fileErr := c.FormFile("image")
	if fileErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing image part"))
	}
	content, contentType, readErr := readFormFile(fh)
	if readErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read image part"))
	}

	image, err := s.postService.UploadPostImage(c.UserContext(), memberID, postID, service.UploadedImage{
		Content:     content,
		ContentType: contentType,
	})
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

// DeletePostImage detaches an image from the caller's own post.
func (s *Server) DeletePostImage(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	imageID, err := s.parseID(c, "imageId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePostImage(c.UserContext(), memberID, postID, imageID); err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Image deleted"})
}
