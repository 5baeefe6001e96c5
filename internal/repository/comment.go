package repository

import (
	"context"
	"errors"

	"gaethering/internal/models"
	"gaethering/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint, lastCommentID uint, size int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	HasOlder(ctx context.Context, postID uint, commentID uint) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Select("comments.*, members.nickname as nickname").
		Joins("LEFT JOIN members ON members.id = comments.member_id").
		First(&comment, "comments.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewCommentNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, id uint, content string) error {
	defer observability.TrackQuery("update", "comments")()
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "comments")()
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, lastCommentID uint, size int) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Select("comments.*, members.nickname as nickname").
		Joins("LEFT JOIN members ON members.id = comments.member_id").
		Where("comments.post_id = ? AND comments.id < ?", postID, lastCommentID).
		Order("comments.id DESC").
		Limit(size).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// HasOlder reports whether any comment on the post has an id smaller than the
// given one. Used to decide whether a page is the last one.
func (r *commentRepository) HasOlder(ctx context.Context, postID uint, commentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND id < ?", postID, commentID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}
