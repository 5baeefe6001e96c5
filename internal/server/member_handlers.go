package server

import (
	"encoding/json"
	"io"
	"mime/multipart"

	"gaethering/internal/models"
	"gaethering/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignUp handles member registration. The request is multipart/form-data with
// a required "data" part (JSON) and an optional "image" part holding the
// profile image.
func (s *Server) SignUp(c *fiber.Ctx) error {
	var input service.SignUpInput

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		values := form.Value["data"]
		if len(values) == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Missing data part"))
		}
		if err := json.Unmarshal([]byte(values[0]), &input); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid data part"))
		}

		if files := form.File["image"]; len(files) > 0 {
			content, contentType, err := readFormFile(files[0])
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Could not read image part"))
			}
			input.ProfileImage = content
			input.ProfileImageType = contentType
		}
	} else if err := c.BodyParser(&input); err != nil {
		// Plain JSON sign-up without a profile image is also accepted.
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.memberService.SignUp(c.UserContext(), input)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// SignIn authenticates a member and returns an access/refresh token pair.
func (s *Server) SignIn(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tokens, err := s.memberService.Login(c.UserContext(), input)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(tokens)
}

// Reissue exchanges a refresh token for a fresh token pair.
func (s *Server) Reissue(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refreshToken is required"))
	}

	tokens, err := s.memberService.Reissue(c.UserContext(), input.RefreshToken)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(tokens)
}

// SignOut revokes the caller's access token.
func (s *Server) SignOut(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	if err := s.memberService.Logout(c.UserContext(), token); err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// SendEmailAuthCode issues and mails a fresh verification code.
func (s *Server) SendEmailAuthCode(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil || input.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("email is required"))
	}

	if err := s.memberService.SendEmailAuthCode(c.UserContext(), input.Email); err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Auth code sent"})
}

// ConfirmEmailAuth redeems an emailed verification code for the signed-in
// member. The code is single-use: a failed attempt discards it and a fresh
// one has to be requested.
func (s *Server) ConfirmEmailAuth(c *fiber.Ctx) error {
	email := c.Locals("email").(string)

	var input struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil || input.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("code is required"))
	}

	if err := s.memberService.ConfirmEmailAuthCode(c.UserContext(), email, input.Code); err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"emailAuth": true})
}

// GetOwnProfile returns the signed-in member's full profile.
func (s *Server) GetOwnProfile(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)

	profile, err := s.memberService.GetOwnProfile(c.UserContext(), memberID)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(profile)
}

// GetOtherProfile returns the public subset of another member's profile.
func (s *Server) GetOtherProfile(c *fiber.Ctx) error {
	memberID, err := s.parseID(c, "memberId")
	if err != nil {
		return nil
	}

	profile, err := s.memberService.GetOtherProfile(c.UserContext(), memberID)
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(profile)
}

// ModifyNickname changes the signed-in member's nickname.
func (s *Server) ModifyNickname(c *fiber.Ctx) error {
	memberID := c.Locals("memberID").(uint)

	var input struct {
		Nickname string `json:"nickname"`
	}
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.memberService.ModifyNickname(c.UserContext(), service.ModifyNicknameInput{
		MemberID: memberID,
		Nickname: input.Nickname,
	})
	if err != nil {
		return models.RespondDomainError(c, err)
	}
	return c.JSON(profile)
}

// readFormFile reads a multipart file header's content and content type.
func readFormFile(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return content, fh.Header.Get("Content-Type"), nil
}
