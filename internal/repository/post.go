package repository

import (
	"context"
	"errors"

	"gaethering/internal/models"
	"gaethering/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post and post-image data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, buildImages func(postID uint) ([]models.PostImage, error)) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetDetail(ctx context.Context, id uint, currentMemberID uint) (*models.Post, error)
	ListByCategory(ctx context.Context, categoryID uint, lastPostID uint, size int, currentMemberID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCnt(ctx context.Context, id uint) error

	AddImage(ctx context.Context, image *models.PostImage) error
	GetImage(ctx context.Context, imageID uint) (*models.PostImage, error)
	DeleteImage(ctx context.Context, imageID uint) error
	ListImages(ctx context.Context, postID uint) ([]*models.PostImage, error)
	SetRepresentativeImage(ctx context.Context, imageID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch counts and heart status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentMemberID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comment_cnt, " +
		"(SELECT COUNT(*) FROM hearts WHERE hearts.post_id = posts.id) as heart_cnt"

	if currentMemberID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM hearts WHERE hearts.post_id = posts.id AND hearts.member_id = ?) as has_heart",
			currentMemberID)
	}

	return db.Select(selectQuery + ", false as has_heart")
}

// Create persists the post and its images in one transaction. buildImages
// runs after the post row exists so image keys can carry the post id; any
// error it returns rolls the post back.
func (r *postRepository) Create(ctx context.Context, post *models.Post, buildImages func(postID uint) ([]models.PostImage, error)) error {
	defer observability.TrackQuery("create", "posts")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if buildImages == nil {
			return nil
		}
		images, err := buildImages(post.ID)
		if err != nil {
			return err
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}
		post.Images = images
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Images").
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewPostNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetDetail(ctx context.Context, id uint, currentMemberID uint) (*models.Post, error) {
	defer observability.TrackQuery("get_detail", "posts")()

	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentMemberID).
		Preload("Member").
		Preload("Images").
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewPostNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, lastPostID uint, size int, currentMemberID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentMemberID).
		Preload("Images").
		Where("category_id = ? AND posts.id < ?", categoryID, lastPostID).
		Order("posts.id DESC").
		Limit(size).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{"title": post.Title, "content": post.Content}).Error
}

// Delete removes the post and cascades its hearts, comments and images in a
// single transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Heart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *postRepository) IncrementViewCnt(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_cnt", gorm.Expr("view_cnt + 1")).Error
}

func (r *postRepository) AddImage(ctx context.Context, image *models.PostImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *postRepository) GetImage(ctx context.Context, imageID uint) (*models.PostImage, error) {
	var image models.PostImage
	err := r.db.WithContext(ctx).First(&image, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewPostImageNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *postRepository) DeleteImage(ctx context.Context, imageID uint) error {
	return r.db.WithContext(ctx).Delete(&models.PostImage{}, imageID).Error
}

func (r *postRepository) SetRepresentativeImage(ctx context.Context, imageID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.PostImage{}).
		Where("id = ?", imageID).
		Update("is_representative", true).Error
}

func (r *postRepository) ListImages(ctx context.Context, postID uint) ([]*models.PostImage, error) {
	var images []*models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id").
		Find(&images).Error
	return images, err
}
