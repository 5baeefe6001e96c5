package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Stable domain error codes surfaced in the API error envelope.
const (
	CodeMemberNotFound      = "MEMBER_NOT_FOUND"
	CodeDuplicatedEmail     = "DUPLICATED_EMAIL"
	CodeDuplicatedNickname  = "DUPLICATED_NICKNAME"
	CodeInvalidAuthCode     = "INVALID_AUTH_CODE"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodePostNotFound        = "POST_NOT_FOUND"
	CodePostImageNotFound   = "POST_IMAGE_NOT_FOUND"
	CodeNoPermUpdatePost    = "NO_PERMISSION_TO_UPDATE_POST"
	CodeNoPermDeletePost    = "NO_PERMISSION_TO_DELETE_POST"
	CodeCommentNotFound     = "COMMENT_NOT_FOUND"
	CodeNoPermUpdateComment = "NO_PERMISSION_TO_UPDATE_COMMENT"
	CodeNoPermDeleteComment = "NO_PERMISSION_TO_DELETE_COMMENT"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// ErrorResponse is the standardized API error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AppError represents a custom application error with a stable code.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors

func NewMemberNotFoundError() *AppError {
	return &AppError{Code: CodeMemberNotFound, Message: "Member not found"}
}

func NewDuplicatedEmailError() *AppError {
	return &AppError{Code: CodeDuplicatedEmail, Message: "Email is already in use"}
}

func NewDuplicatedNicknameError() *AppError {
	return &AppError{Code: CodeDuplicatedNickname, Message: "Nickname is already in use"}
}

func NewInvalidAuthCodeError() *AppError {
	return &AppError{Code: CodeInvalidAuthCode, Message: "Auth code is invalid or expired"}
}

func NewCategoryNotFoundError() *AppError {
	return &AppError{Code: CodeCategoryNotFound, Message: "Category not found"}
}

func NewPostNotFoundError() *AppError {
	return &AppError{Code: CodePostNotFound, Message: "Post not found"}
}

func NewPostImageNotFoundError() *AppError {
	return &AppError{Code: CodePostImageNotFound, Message: "Post image not found"}
}

func NewCommentNotFoundError() *AppError {
	return &AppError{Code: CodeCommentNotFound, Message: "Comment not found"}
}

func NewNoPermissionError(code string) *AppError {
	return &AppError{Code: code, Message: "No permission for this operation"}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidationError, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternalError, Message: "Internal server error", Err: err}
}

// StatusForError maps a domain error to its HTTP status.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeMemberNotFound, CodeCategoryNotFound, CodePostNotFound,
		CodePostImageNotFound, CodeCommentNotFound:
		return fiber.StatusNotFound
	case CodeDuplicatedEmail, CodeDuplicatedNickname:
		return fiber.StatusConflict
	case CodeNoPermUpdatePost, CodeNoPermDeletePost,
		CodeNoPermUpdateComment, CodeNoPermDeleteComment:
		return fiber.StatusForbidden
	case CodeValidationError, CodeInvalidAuthCode:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standardized error envelope.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
	}
	return c.Status(status).JSON(ErrorResponse{
		Code:    CodeInternalError,
		Message: err.Error(),
	})
}

// RespondDomainError writes the envelope with the status derived from the
// error's domain code.
func RespondDomainError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusForError(err), err)
}
