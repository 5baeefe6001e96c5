package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gaethering/internal/cache"
	"gaethering/internal/config"
	"gaethering/internal/mail"
	"gaethering/internal/middleware"
	"gaethering/internal/models"
	"gaethering/internal/observability"
	"gaethering/internal/repository"
	"gaethering/internal/storage"
	"gaethering/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type MemberService struct {
	memberRepo    repository.MemberRepository
	emailAuthRepo repository.EmailAuthRepository
	mailer        mail.Mailer
	store         storage.ObjectStore
	rdb           *redis.Client
	jwtSecret     string
	authCodeTTL   time.Duration
}

type SignUpInput struct {
	Email            string `json:"email"`
	Nickname         string `json:"nickname"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Birth            string `json:"birth"`
	ProfileImage     []byte `json:"-"`
	ProfileImageType string `json:"-"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ModifyNicknameInput struct {
	MemberID uint
	Nickname string
}

// ProfileResponse is the member profile as exposed over the API.
type ProfileResponse struct {
	MemberID        uint   `json:"memberId"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Birth           string `json:"birth,omitempty"`
	ProfileImageURL string `json:"profileImageUrl"`
	EmailAuth       bool   `json:"emailAuth"`
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	emailAuthRepo repository.EmailAuthRepository,
	mailer mail.Mailer,
	store storage.ObjectStore,
	rdb *redis.Client,
	cfg *config.Config,
) *MemberService {
	return &MemberService{
		memberRepo:    memberRepo,
		emailAuthRepo: emailAuthRepo,
		mailer:        mailer,
		store:         store,
		rdb:           rdb,
		jwtSecret:     cfg.JWTSecret,
		authCodeTTL:   time.Duration(cfg.EmailAuthTTLMin) * time.Minute,
	}
}

// SignUp registers a new member. The profile image is optional; when present
// it is normalized and stored before the member row is written. A verification
// code is mailed afterwards; mail failure does not roll back the sign-up.
func (s *MemberService) SignUp(ctx context.Context, in SignUpInput) (*ProfileResponse, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if exists, err := s.memberRepo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, models.NewDuplicatedEmailError()
	}
	if exists, err := s.memberRepo.ExistsByNickname(ctx, in.Nickname); err != nil {
		return nil, err
	} else if exists {
		return nil, models.NewDuplicatedNicknameError()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var profileImageURL string
	if len(in.ProfileImage) > 0 {
		processed, err := storage.ProcessImage(in.ProfileImage, in.ProfileImageType, storage.DefaultMaxUploadSizeMB*1024*1024)
		if err != nil {
			return nil, err
		}
		key := storage.ProfileImageKey(processed.Ext)
		url, err := s.store.Put(ctx, key, processed.ContentType, processed.Data)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		profileImageURL = url
		observability.ImageUploads.WithLabelValues("profile").Inc()
	}

	member := &models.Member{
		Email:           in.Email,
		Nickname:        in.Nickname,
		Password:        string(hashed),
		Name:            in.Name,
		Phone:           in.Phone,
		Birth:           in.Birth,
		ProfileImageURL: profileImageURL,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	if err := s.sendAuthCode(ctx, member.Email); err != nil {
		middleware.Logger.WarnContext(ctx, "sign-up succeeded but auth mail failed",
			"member_id", member.ID, "error", err)
	}

	return toProfileResponse(member), nil
}

// SendEmailAuthCode issues a fresh verification code for the address and
// mails it. Earlier unredeemed codes stay valid until their TTL runs out.
func (s *MemberService) SendEmailAuthCode(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}
	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if member.IsEmailAuth {
		return models.NewValidationError("email is already verified")
	}
	return s.sendAuthCode(ctx, email)
}

func (s *MemberService) sendAuthCode(ctx context.Context, email string) error {
	code, err := generateAuthCode()
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.emailAuthRepo.Save(ctx, email, code, s.authCodeTTL); err != nil {
		return models.NewInternalError(err)
	}
	return s.mailer.SendAuthCode(ctx, email, code)
}

// ConfirmEmailAuthCode redeems a verification code. A code can be used once;
// expired, consumed, and never-issued codes are all rejected the same way.
func (s *MemberService) ConfirmEmailAuthCode(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return models.NewInvalidAuthCodeError()
	}
	if err := s.emailAuthRepo.Consume(ctx, email, code); err != nil {
		observability.EmailAuthConfirms.WithLabelValues("rejected").Inc()
		return err
	}
	if err := s.memberRepo.MarkEmailAuthenticated(ctx, email); err != nil {
		return err
	}
	observability.EmailAuthConfirms.WithLabelValues("confirmed").Inc()
	return nil
}

func (s *MemberService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	member, err := s.memberRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeMemberNotFound {
			return nil, models.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(in.Password)) != nil {
		return nil, models.NewUnauthorizedError("invalid email or password")
	}
	return issueTokenPair(s.jwtSecret, member.ID, member.Email)
}

// Reissue exchanges a valid refresh token for a new pair. The used refresh
// token is blacklisted so each one works exactly once.
func (s *MemberService) Reissue(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := middleware.ParseClaims(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, models.NewUnauthorizedError("invalid refresh token")
	}
	if t, _ := claims["type"].(string); t != tokenTypeRefresh {
		return nil, models.NewUnauthorizedError("invalid refresh token")
	}
	jti, _ := claims["jti"].(string)
	if jti != "" {
		revoked, err := s.rdb.Exists(ctx, cache.BlacklistKey(jti)).Result()
		if err != nil {
			observability.RedisErrors.WithLabelValues("token_blacklist").Inc()
			return nil, models.NewInternalError(err)
		}
		if revoked > 0 {
			return nil, models.NewUnauthorizedError("refresh token has been revoked")
		}
	}
	memberID, email, err := middleware.IdentityFromClaims(claims)
	if err != nil {
		return nil, models.NewUnauthorizedError("invalid refresh token")
	}
	if err := blacklistToken(ctx, s.rdb, claims); err != nil {
		return nil, models.NewInternalError(err)
	}
	return issueTokenPair(s.jwtSecret, memberID, email)
}

// Logout revokes the presented access token.
func (s *MemberService) Logout(ctx context.Context, accessToken string) error {
	claims, err := middleware.ParseClaims(accessToken, s.jwtSecret)
	if err != nil {
		return models.NewUnauthorizedError("invalid token")
	}
	if err := blacklistToken(ctx, s.rdb, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetOwnProfile returns the full profile of the authenticated member.
func (s *MemberService) GetOwnProfile(ctx context.Context, memberID uint) (*ProfileResponse, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(member), nil
}

// GetOtherProfile returns the public subset of another member's profile.
func (s *MemberService) GetOtherProfile(ctx context.Context, memberID uint) (*ProfileResponse, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	resp := toProfileResponse(member)
	resp.Email = ""
	resp.Name = ""
	resp.Phone = ""
	resp.Birth = ""
	return resp, nil
}

func (s *MemberService) ModifyNickname(ctx context.Context, in ModifyNicknameInput) (*ProfileResponse, error) {
	if err := validation.ValidateNickname(in.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if exists, err := s.memberRepo.ExistsByNickname(ctx, in.Nickname); err != nil {
		return nil, err
	} else if exists {
		return nil, models.NewDuplicatedNicknameError()
	}
	if err := s.memberRepo.UpdateNickname(ctx, in.MemberID, in.Nickname); err != nil {
		return nil, err
	}
	return s.GetOwnProfile(ctx, in.MemberID)
}

func toProfileResponse(m *models.Member) *ProfileResponse {
	return &ProfileResponse{
		MemberID:        m.ID,
		Email:           m.Email,
		Nickname:        m.Nickname,
		Name:            m.Name,
		Phone:           m.Phone,
		Birth:           m.Birth,
		ProfileImageURL: m.ProfileImageURL,
		EmailAuth:       m.IsEmailAuth,
	}
}

// generateAuthCode produces a 6-digit numeric code.
func generateAuthCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
