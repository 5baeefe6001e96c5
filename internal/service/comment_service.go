package service

import (
	"context"

	"gaethering/internal/models"
	"gaethering/internal/repository"
	"gaethering/internal/validation"
)

const maxCommentLen = 1000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type WriteCommentInput struct {
	MemberID uint
	PostID   uint
	Content  string
}

type UpdateCommentInput struct {
	MemberID  uint
	PostID    uint
	CommentID uint
	Content   string
}

type ListCommentsInput struct {
	PostID          uint
	LastCommentID   uint
	Size            int
	CurrentMemberID uint
}

// CommentListResponse is the keyset page of comments on a post, newest first.
// NextCursor is -1 when the oldest comment has been reached.
type CommentListResponse struct {
	Comments         []*models.Comment `json:"comments"`
	TotalCommentsCnt int64             `json:"totalCommentsCnt"`
	NextCursor       int64             `json:"nextCursor"`
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *CommentService) WriteComment(ctx context.Context, in WriteCommentInput) (*models.Comment, error) {
	if err := validation.ValidateRequired("content", in.Content, maxCommentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  in.Content,
		MemberID: in.MemberID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateRequired("content", in.Content, maxCommentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != in.PostID {
		return nil, models.NewCommentNotFoundError()
	}
	if comment.MemberID != in.MemberID {
		return nil, models.NewNoPermissionError(models.CodeNoPermUpdateComment)
	}

	if err := s.commentRepo.Update(ctx, in.CommentID, in.Content); err != nil {
		return nil, err
	}
	comment.Content = in.Content
	comment.IsOwner = true
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, memberID, postID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return models.NewCommentNotFoundError()
	}
	if comment.MemberID != memberID {
		return models.NewNoPermissionError(models.CodeNoPermDeleteComment)
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// GetComments returns one keyset page of comments plus the total count.
// NextCursor is the id of the oldest comment in the page, or -1 once no older
// comments exist.
func (s *CommentService) GetComments(ctx context.Context, in ListCommentsInput) (*CommentListResponse, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	size := normalizePageSize(in.Size)
	cursor := normalizeCursor(in.LastCommentID)

	comments, err := s.commentRepo.ListByPost(ctx, in.PostID, cursor, size)
	if err != nil {
		return nil, err
	}
	total, err := s.commentRepo.CountByPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		c.IsOwner = in.CurrentMemberID != 0 && c.MemberID == in.CurrentMemberID
	}

	nextCursor := int64(-1)
	if len(comments) > 0 {
		oldest := comments[len(comments)-1].ID
		hasOlder, err := s.commentRepo.HasOlder(ctx, in.PostID, oldest)
		if err != nil {
			return nil, err
		}
		if hasOlder {
			nextCursor = int64(oldest)
		}
	}

	if comments == nil {
		comments = []*models.Comment{}
	}
	return &CommentListResponse{
		Comments:         comments,
		TotalCommentsCnt: total,
		NextCursor:       nextCursor,
	}, nil
}
