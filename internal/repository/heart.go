package repository

import (
	"context"

	"gaethering/internal/models"
	"gaethering/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HeartRepository defines the interface for heart data operations
type HeartRepository interface {
	Exists(ctx context.Context, memberID, postID uint) (bool, error)
	Insert(ctx context.Context, memberID, postID uint) error
	Remove(ctx context.Context, memberID, postID uint) error
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type heartRepository struct {
	db *gorm.DB
}

// NewHeartRepository creates a new heart repository
func NewHeartRepository(db *gorm.DB) HeartRepository {
	return &heartRepository{db: db}
}

func (r *heartRepository) Exists(ctx context.Context, memberID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Heart{}).
		Where("member_id = ? AND post_id = ?", memberID, postID).
		Count(&count).Error
	return count > 0, err
}

// Insert adds a heart. A concurrent duplicate is absorbed by the unique index,
// keeping the toggle idempotent.
func (r *heartRepository) Insert(ctx context.Context, memberID, postID uint) error {
	defer observability.TrackQuery("create", "hearts")()
	heart := models.Heart{MemberID: memberID, PostID: postID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&heart).Error
}

func (r *heartRepository) Remove(ctx context.Context, memberID, postID uint) error {
	defer observability.TrackQuery("delete", "hearts")()
	return r.db.WithContext(ctx).
		Where("member_id = ? AND post_id = ?", memberID, postID).
		Delete(&models.Heart{}).Error
}

func (r *heartRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Heart{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
