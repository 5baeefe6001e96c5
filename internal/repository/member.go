// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"gaethering/internal/cache"
	"gaethering/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	UpdateNickname(ctx context.Context, id uint, nickname string) error
	MarkEmailAuthenticated(ctx context.Context, email string) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// isUniqueViolation reports whether err is a unique-constraint violation on
// the given column. Covers the postgres error code and the sqlite message
// used by tests.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return strings.Contains(pgErr.ConstraintName, column)
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	err := r.db.WithContext(ctx).Create(member).Error
	switch {
	case isUniqueViolation(err, "email"):
		return models.NewDuplicatedEmailError()
	case isUniqueViolation(err, "nickname"):
		return models.NewDuplicatedNicknameError()
	}
	return err
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewMemberNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := cache.Aside(ctx, cache.MemberKey(id), &member, cache.MemberTTL, func() error {
		return r.db.WithContext(ctx).First(&member, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewMemberNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("nickname = ?", nickname).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepository) UpdateNickname(ctx context.Context, id uint, nickname string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("nickname", nickname).Error
	if isUniqueViolation(err, "nickname") {
		return models.NewDuplicatedNicknameError()
	}
	if err == nil {
		cache.InvalidateMember(ctx, id)
	}
	return err
}

func (r *memberRepository) MarkEmailAuthenticated(ctx context.Context, email string) error {
	var member models.Member
	err := r.db.WithContext(ctx).
		Select("id").
		Where("email = ?", email).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewMemberNotFoundError()
	}
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", member.ID).
		Update("is_email_auth", true).Error
	if err != nil {
		return err
	}
	// The cached profile still carries the old flag.
	cache.InvalidateMember(ctx, member.ID)
	return nil
}
