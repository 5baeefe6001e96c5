package service

import (
	"context"

	"gaethering/internal/models"
	"gaethering/internal/observability"
	"gaethering/internal/repository"
	"gaethering/internal/storage"
	"gaethering/internal/validation"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	maxTitleLen   = 200
	maxContentLen = 50000
)

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	store        storage.ObjectStore
}

// UploadedImage is one multipart image part of a write-post request.
type UploadedImage struct {
	Content     []byte
	ContentType string
}

type WritePostInput struct {
	MemberID   uint
	CategoryID uint
	Title      string
	Content    string
	Images     []UploadedImage
}

type UpdatePostInput struct {
	MemberID uint
	PostID   uint
	Title    string
	Content  string
}

type ListPostsInput struct {
	CategoryID      uint
	LastPostID      uint
	Size            int
	CurrentMemberID uint
}

// PostListItem is the list-view projection of a post. The representative
// image URL is null for posts without images.
type PostListItem struct {
	PostID                 uint    `json:"postId"`
	Title                  string  `json:"title"`
	ViewCnt                int     `json:"viewCnt"`
	HeartCnt               int     `json:"heartCnt"`
	CommentCnt             int     `json:"commentCnt"`
	HasHeart               bool    `json:"hasHeart"`
	RepresentativeImageURL *string `json:"representativeImageUrl"`
	CreatedAt              string  `json:"createdAt"`
}

// PostListResponse is the keyset page returned for a category listing.
type PostListResponse struct {
	Posts      []PostListItem `json:"posts"`
	NextCursor int64          `json:"nextCursor"`
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	store storage.ObjectStore,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		store:        store,
	}
}

// WritePost creates a post under a category. The first image uploaded becomes
// the representative one shown in list views. The post row and its image rows
// are written in one transaction; stored blobs are removed when it rolls back.
func (s *PostService) WritePost(ctx context.Context, in WritePostInput) (*models.Post, error) {
	if err := validation.ValidateRequired("title", in.Title, maxTitleLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateRequired("content", in.Content, maxContentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if exists, err := s.categoryRepo.ExistsByID(ctx, in.CategoryID); err != nil {
		return nil, err
	} else if !exists {
		return nil, models.NewCategoryNotFoundError()
	}

	// Decode failures surface before anything is persisted.
	processed := make([]*storage.ProcessedImage, 0, len(in.Images))
	for _, img := range in.Images {
		p, err := storage.ProcessImage(img.Content, img.ContentType, storage.DefaultMaxUploadSizeMB*1024*1024)
		if err != nil {
			return nil, err
		}
		processed = append(processed, p)
	}

	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		MemberID:   in.MemberID,
		CategoryID: in.CategoryID,
	}

	var storedKeys []string
	err := s.postRepo.Create(ctx, post, func(postID uint) ([]models.PostImage, error) {
		images := make([]models.PostImage, 0, len(processed))
		for i, p := range processed {
			key := storage.PostImageKey(postID, p.Ext)
			url, err := s.store.Put(ctx, key, p.ContentType, p.Data)
			if err != nil {
				return nil, models.NewInternalError(err)
			}
			storedKeys = append(storedKeys, key)
			images = append(images, models.PostImage{
				ImageURL:         url,
				StorageKey:       key,
				IsRepresentative: i == 0,
				PostID:           postID,
			})
		}
		return images, nil
	})
	if err != nil {
		for _, key := range storedKeys {
			_ = s.store.Remove(ctx, key)
		}
		return nil, err
	}

	for range processed {
		observability.ImageUploads.WithLabelValues("board").Inc()
	}
	return post, nil
}

func (s *PostService) storePostImage(ctx context.Context, postID uint, img UploadedImage, representative bool) (*models.PostImage, error) {
	processed, err := storage.ProcessImage(img.Content, img.ContentType, storage.DefaultMaxUploadSizeMB*1024*1024)
	if err != nil {
		return nil, err
	}
	key := storage.PostImageKey(postID, processed.Ext)
	url, err := s.store.Put(ctx, key, processed.ContentType, processed.Data)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	image := &models.PostImage{
		ImageURL:         url,
		StorageKey:       key,
		IsRepresentative: representative,
		PostID:           postID,
	}
	if err := s.postRepo.AddImage(ctx, image); err != nil {
		_ = s.store.Remove(ctx, key)
		return nil, err
	}
	observability.ImageUploads.WithLabelValues("board").Inc()
	return image, nil
}

// GetPosts returns a keyset page of posts in a category, newest first.
// nextCursor is the id of the last post in the page, or -1 when no older
// posts remain.
func (s *PostService) GetPosts(ctx context.Context, in ListPostsInput) (*PostListResponse, error) {
	if exists, err := s.categoryRepo.ExistsByID(ctx, in.CategoryID); err != nil {
		return nil, err
	} else if !exists {
		return nil, models.NewCategoryNotFoundError()
	}

	size := normalizePageSize(in.Size)
	cursor := normalizeCursor(in.LastPostID)

	posts, err := s.postRepo.ListByCategory(ctx, in.CategoryID, cursor, size, in.CurrentMemberID)
	if err != nil {
		return nil, err
	}

	items := make([]PostListItem, 0, len(posts))
	for _, p := range posts {
		item := PostListItem{
			PostID:     p.ID,
			Title:      p.Title,
			ViewCnt:    p.ViewCnt,
			HeartCnt:   p.HeartCnt,
			CommentCnt: p.CommentCnt,
			HasHeart:   p.HasHeart,
			CreatedAt:  p.CreatedAt.Format("2006-01-02T15:04:05"),
		}
		if url := p.RepresentativeImageURL(); url != "" {
			item.RepresentativeImageURL = &url
		}
		items = append(items, item)
	}

	nextCursor := int64(-1)
	if len(posts) == size {
		nextCursor = int64(posts[len(posts)-1].ID)
	}

	return &PostListResponse{Posts: items, NextCursor: nextCursor}, nil
}

// GetOnePost returns the post detail and bumps its view count by one. A post
// requested under a category it does not belong to reads as not found.
func (s *PostService) GetOnePost(ctx context.Context, categoryID, postID, currentMemberID uint) (*models.Post, error) {
	if exists, err := s.categoryRepo.ExistsByID(ctx, categoryID); err != nil {
		return nil, err
	} else if !exists {
		return nil, models.NewCategoryNotFoundError()
	}

	post, err := s.postRepo.GetDetail(ctx, postID, currentMemberID)
	if err != nil {
		return nil, err
	}
	if post.CategoryID != categoryID {
		return nil, models.NewPostNotFoundError()
	}
	post.Nickname = post.Member.Nickname
	post.IsOwner = currentMemberID != 0 && post.MemberID == currentMemberID
	if err := s.postRepo.IncrementViewCnt(ctx, postID); err != nil {
		return nil, err
	}
	post.ViewCnt++
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validation.ValidateRequired("title", in.Title, maxTitleLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateRequired("content", in.Content, maxContentLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.MemberID != in.MemberID {
		return nil, models.NewNoPermissionError(models.CodeNoPermUpdatePost)
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post, its database children and its stored images.
func (s *PostService) DeletePost(ctx context.Context, memberID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.MemberID != memberID {
		return models.NewNoPermissionError(models.CodeNoPermDeletePost)
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	for _, img := range post.Images {
		if img.StorageKey != "" {
			_ = s.store.Remove(ctx, img.StorageKey)
		}
	}
	return nil
}

// UploadPostImage attaches an additional image to an existing post. It becomes
// representative only if the post has no images yet.
func (s *PostService) UploadPostImage(ctx context.Context, memberID, postID uint, img UploadedImage) (*models.PostImage, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.MemberID != memberID {
		return nil, models.NewNoPermissionError(models.CodeNoPermUpdatePost)
	}
	return s.storePostImage(ctx, postID, img, len(post.Images) == 0)
}

// DeletePostImage removes an image from a post. Image operations share the
// update-post permission. If the representative image is removed, the oldest
// remaining image takes its place.
func (s *PostService) DeletePostImage(ctx context.Context, memberID, postID, imageID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.MemberID != memberID {
		return models.NewNoPermissionError(models.CodeNoPermUpdatePost)
	}

	image, err := s.postRepo.GetImage(ctx, imageID)
	if err != nil {
		return err
	}
	if image.PostID != postID {
		return models.NewPostImageNotFoundError()
	}

	if err := s.postRepo.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	if image.StorageKey != "" {
		_ = s.store.Remove(ctx, image.StorageKey)
	}

	if image.IsRepresentative {
		remaining, err := s.postRepo.ListImages(ctx, postID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := s.postRepo.SetRepresentativeImage(ctx, remaining[0].ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// normalizeCursor maps "no cursor" to a sentinel larger than any real id so
// the first page starts at the newest row.
func normalizeCursor(last uint) uint {
	if last == 0 {
		return ^uint(0) >> 1
	}
	return last
}
