// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gaethering/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls how demo data is generated.
type SeedOptions struct {
	// SkipBcrypt stores a plaintext password instead of hashing. Dev fast mode only.
	SkipBcrypt bool
	// DryRun logs what would be created without writing to the database.
	DryRun bool
	// MaxDays spreads created_at timestamps over the past N days (default 90).
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng, nextID: 1000}
}

// CreateMember constructs and persists a sample `models.Member`.
// Optional override functions may modify the generated member before saving.
func (f *Factory) CreateMember(overrides ...func(*models.Member)) (*models.Member, error) {
	member := &models.Member{
		Email:           gofakeit.Email(),
		Nickname:        gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Name:            gofakeit.Name(),
		Phone:           gofakeit.Phone(),
		Birth:           gofakeit.DateRange(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"),
		ProfileImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		IsEmailAuth:     true,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		member.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		member.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(member)
	}

	if f.opts.DryRun {
		f.nextID++
		member.ID = f.nextID
		log.Printf("[dry-run] CreateMember: %s <%s>", member.Nickname, member.Email)
		return member, nil
	}

	if err := f.db.Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

// BuildPost constructs a post struct without persisting it. Useful for batching.
func (f *Factory) BuildPost(member *models.Member, categoryID uint, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:      gofakeit.Sentence(5),
		Content:    gofakeit.Paragraph(1, 3, 5, "\n"),
		MemberID:   member.ID,
		CategoryID: categoryID,
		ViewCnt:    gofakeit.Number(0, 500),
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` in the given category.
func (f *Factory) CreatePost(member *models.Member, categoryID uint, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(member, categoryID, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: member=%d category=%d title=%q", post.MemberID, post.CategoryID, post.Title)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreatePostImage attaches a placeholder image record to the post.
func (f *Factory) CreatePostImage(post *models.Post, representative bool) (*models.PostImage, error) {
	image := &models.PostImage{
		ImageURL:         fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		IsRepresentative: representative,
		PostID:           post.ID,
	}

	if f.opts.DryRun {
		f.nextID++
		image.ID = f.nextID
		return image, nil
	}

	if err := f.db.Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided member.
func (f *Factory) CreateComment(member *models.Member, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(8),
		MemberID: member.ID,
		PostID:   post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateHeart persists a heart from `member` on `post`.
func (f *Factory) CreateHeart(member *models.Member, post *models.Post) error {
	if f.opts.DryRun {
		return nil
	}
	heart := &models.Heart{
		MemberID: member.ID,
		PostID:   post.ID,
	}
	return f.db.Create(heart).Error
}
