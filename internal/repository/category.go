package repository

import (
	"context"
	"errors"

	"gaethering/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category lookups.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewCategoryNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("id").Find(&categories).Error
	return categories, err
}
