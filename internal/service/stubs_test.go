package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gaethering/internal/models"

	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn            func(context.Context, *models.Post, func(uint) ([]models.PostImage, error)) error
	getByIDFn           func(context.Context, uint) (*models.Post, error)
	getDetailFn         func(context.Context, uint, uint) (*models.Post, error)
	listByCategoryFn    func(context.Context, uint, uint, int, uint) ([]*models.Post, error)
	updateFn            func(context.Context, *models.Post) error
	deleteFn            func(context.Context, uint) error
	incrementViewFn     func(context.Context, uint) error
	addImageFn          func(context.Context, *models.PostImage) error
	getImageFn          func(context.Context, uint) (*models.PostImage, error)
	deleteImageFn       func(context.Context, uint) error
	listImagesFn        func(context.Context, uint) ([]*models.PostImage, error)
	setRepresentativeFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, buildImages func(uint) ([]models.PostImage, error)) error {
	return s.createFn(ctx, post, buildImages)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetDetail(ctx context.Context, id, memberID uint) (*models.Post, error) {
	return s.getDetailFn(ctx, id, memberID)
}
func (s *postRepoStub) ListByCategory(ctx context.Context, categoryID, lastPostID uint, size int, memberID uint) ([]*models.Post, error) {
	return s.listByCategoryFn(ctx, categoryID, lastPostID, size, memberID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementViewCnt(ctx context.Context, id uint) error {
	return s.incrementViewFn(ctx, id)
}
func (s *postRepoStub) AddImage(ctx context.Context, image *models.PostImage) error {
	return s.addImageFn(ctx, image)
}
func (s *postRepoStub) GetImage(ctx context.Context, imageID uint) (*models.PostImage, error) {
	return s.getImageFn(ctx, imageID)
}
func (s *postRepoStub) DeleteImage(ctx context.Context, imageID uint) error {
	return s.deleteImageFn(ctx, imageID)
}
func (s *postRepoStub) ListImages(ctx context.Context, postID uint) ([]*models.PostImage, error) {
	return s.listImagesFn(ctx, postID)
}
func (s *postRepoStub) SetRepresentativeImage(ctx context.Context, imageID uint) error {
	return s.setRepresentativeFn(ctx, imageID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post, buildImages func(uint) ([]models.PostImage, error)) error {
			p.ID = 1
			if buildImages == nil {
				return nil
			}
			images, err := buildImages(p.ID)
			if err != nil {
				return err
			}
			p.Images = images
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, MemberID: 1, CategoryID: 1}, nil
		},
		getDetailFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, MemberID: 1, CategoryID: 1}, nil
		},
		listByCategoryFn: func(_ context.Context, _, _ uint, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		incrementViewFn: func(_ context.Context, _ uint) error { return nil },
		addImageFn: func(_ context.Context, img *models.PostImage) error {
			img.ID = 1
			return nil
		},
		getImageFn: func(_ context.Context, id uint) (*models.PostImage, error) {
			return &models.PostImage{ID: id, PostID: 1}, nil
		},
		deleteImageFn: func(_ context.Context, _ uint) error { return nil },
		listImagesFn: func(_ context.Context, _ uint) ([]*models.PostImage, error) {
			return nil, nil
		},
		setRepresentativeFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	updateFn      func(context.Context, uint, string) error
	deleteFn      func(context.Context, uint) error
	listByPostFn  func(context.Context, uint, uint, int) ([]*models.Comment, error)
	countByPostFn func(context.Context, uint) (int64, error)
	hasOlderFn    func(context.Context, uint, uint) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, id uint, content string) error {
	return s.updateFn(ctx, id, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID, lastCommentID uint, size int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, lastCommentID, size)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) HasOlder(ctx context.Context, postID, commentID uint) (bool, error) {
	return s.hasOlderFn(ctx, postID, commentID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, MemberID: 1, PostID: 1}, nil
		},
		updateFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listByPostFn: func(_ context.Context, _, _ uint, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countByPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		hasOlderFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// heartRepoStub is a stub for repository.HeartRepository.
type heartRepoStub struct {
	existsFn      func(context.Context, uint, uint) (bool, error)
	insertFn      func(context.Context, uint, uint) error
	removeFn      func(context.Context, uint, uint) error
	countByPostFn func(context.Context, uint) (int64, error)
}

func (s *heartRepoStub) Exists(ctx context.Context, memberID, postID uint) (bool, error) {
	return s.existsFn(ctx, memberID, postID)
}
func (s *heartRepoStub) Insert(ctx context.Context, memberID, postID uint) error {
	return s.insertFn(ctx, memberID, postID)
}
func (s *heartRepoStub) Remove(ctx context.Context, memberID, postID uint) error {
	return s.removeFn(ctx, memberID, postID)
}
func (s *heartRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.Category, error)
	existsByIDFn func(context.Context, uint) (bool, error)
	listFn       func(context.Context) ([]*models.Category, error)
}

func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) ExistsByID(ctx context.Context, id uint) (bool, error) {
	return s.existsByIDFn(ctx, id)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]*models.Category, error) {
	return s.listFn(ctx)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "자유게시판"}, nil
		},
		existsByIDFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listFn:       func(_ context.Context) ([]*models.Category, error) { return nil, nil },
	}
}

// memberRepoStub is a stub for repository.MemberRepository.
type memberRepoStub struct {
	createFn           func(context.Context, *models.Member) error
	getByEmailFn       func(context.Context, string) (*models.Member, error)
	getByIDFn          func(context.Context, uint) (*models.Member, error)
	existsByEmailFn    func(context.Context, string) (bool, error)
	existsByNicknameFn func(context.Context, string) (bool, error)
	updateNicknameFn   func(context.Context, uint, string) error
	markEmailAuthFn    func(context.Context, string) error
}

func (s *memberRepoStub) Create(ctx context.Context, member *models.Member) error {
	return s.createFn(ctx, member)
}
func (s *memberRepoStub) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *memberRepoStub) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	return s.getByIDFn(ctx, id)
}
func (s *memberRepoStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.existsByEmailFn(ctx, email)
}
func (s *memberRepoStub) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return s.existsByNicknameFn(ctx, nickname)
}
func (s *memberRepoStub) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	return s.updateNicknameFn(ctx, id, nickname)
}
func (s *memberRepoStub) MarkEmailAuthenticated(ctx context.Context, email string) error {
	return s.markEmailAuthFn(ctx, email)
}

func noopMemberRepo() *memberRepoStub {
	return &memberRepoStub{
		createFn: func(_ context.Context, m *models.Member) error {
			m.ID = 1
			return nil
		},
		getByEmailFn: func(_ context.Context, email string) (*models.Member, error) {
			return &models.Member{ID: 1, Email: email, Nickname: "tester"}, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Member, error) {
			return &models.Member{ID: id, Email: "tester@example.com", Nickname: "tester"}, nil
		},
		existsByEmailFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		existsByNicknameFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateNicknameFn:   func(_ context.Context, _ uint, _ string) error { return nil },
		markEmailAuthFn:    func(_ context.Context, _ string) error { return nil },
	}
}

// emailAuthRepoStub keeps codes in memory keyed by code, each claimable once.
type emailAuthRepoStub struct {
	codes map[string]string // code -> issuing address
}

func newEmailAuthRepoStub() *emailAuthRepoStub {
	return &emailAuthRepoStub{codes: make(map[string]string)}
}

func (s *emailAuthRepoStub) Save(_ context.Context, email, code string, _ time.Duration) error {
	s.codes[code] = email
	return nil
}

func (s *emailAuthRepoStub) Consume(_ context.Context, email, code string) error {
	stored, ok := s.codes[code]
	if !ok {
		return models.NewInvalidAuthCodeError()
	}
	delete(s.codes, code)
	if stored != email {
		return models.NewInvalidAuthCodeError()
	}
	return nil
}

// mailerStub records sent codes.
type mailerStub struct {
	sent     []string
	lastTo   string
	lastCode string
}

func (s *mailerStub) SendAuthCode(_ context.Context, to, code string) error {
	s.sent = append(s.sent, to+":"+code)
	s.lastTo = to
	s.lastCode = code
	return nil
}

// storeStub is an in-memory object store.
type storeStub struct {
	objects map[string][]byte
	removed []string
}

func newStoreStub() *storeStub {
	return &storeStub{objects: make(map[string][]byte)}
}

func (s *storeStub) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.objects[key] = data
	return fmt.Sprintf("http://localhost:8080/media/%s", key), nil
}

func (s *storeStub) Remove(_ context.Context, key string) error {
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidationError)
}
