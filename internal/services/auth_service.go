package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/constants"
	"github.com/tsubakurame/team-todo-api/internal/mailer"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/utils"
)

var (
	ErrInvalidCode        = errors.New("invalid sign-in code")
	ErrCodeExpired        = errors.New("sign-in code expired")
	ErrInvalidToken       = errors.New("invalid sign-in token")
	ErrTokenExpired       = errors.New("sign-in token expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailSendFailed    = errors.New("failed to send email")
)

// AuthService implements the passwordless code/link sign-in flow plus the
// optional password fallback.
type AuthService struct {
	userRepo  repository.UserRepository
	orgRepo   repository.OrganizationRepository
	tokenRepo repository.TokenRepository
	mail      mailer.Sender
	baseURL   string
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	tokenRepo repository.TokenRepository,
	mail mailer.Sender,
	baseURL string,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		tokenRepo: tokenRepo,
		mail:      mail,
		baseURL:   baseURL,
	}
}

// RequestCode issues a fresh single-use token for the email, derives the
// short code from its prefix, and mails both the code and a magic-link
// variant. Re-requesting simply issues another token; older tokens stay
// valid until their own expiry.
func (s *AuthService) RequestCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrEmailRequired
	}

	token := utils.GenerateToken()
	record := &models.VerificationToken{
		Token:      token,
		Identifier: email,
		Code:       utils.CodeFromToken(token),
		ExpiresAt:  time.Now().Add(constants.SignInTokenTTL),
	}
	if err := s.tokenRepo.Create(record); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	link := fmt.Sprintf("%s/api/auth/callback?token=%s", s.baseURL, token)
	subject, body := mailer.SignInCodeMail(record.Code, link)
	if err := s.mail.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}

	return nil
}

// VerifyCode checks a user-typed code against the most recent unexpired
// token for the email and returns that token so the caller can complete a
// standard link-based sign-in. The lookup and the returned token come from
// this call alone.
func (s *AuthService) VerifyCode(email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()

	record, err := s.tokenRepo.FindLatestByIdentifier(email, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("failed to look up verification token: %w", err)
	}

	// The short code has a tighter lifetime than the token record itself.
	if now.After(record.CreatedAt.Add(constants.SignInCodeTTL)) {
		return "", ErrCodeExpired
	}

	supplied := utils.NormalizeCode(code)
	if supplied == "" {
		return "", ErrInvalidCode
	}

	// Tokens issued before a code was recorded match on the token prefix.
	if supplied != record.Code && supplied != utils.CodeFromToken(record.Token) {
		return "", ErrInvalidCode
	}

	return record.Token, nil
}

// CompleteSignIn validates a token, resolves or creates the user for its
// email, and consumes the token. New users land in the default organization.
func (s *AuthService) CompleteSignIn(token string) (*models.User, error) {
	record, err := s.tokenRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	defaultOrg, err := s.orgRepo.FindOrCreateDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default organization: %w", err)
	}

	user, err := s.userRepo.FindOrCreateByEmail(record.Identifier, defaultOrg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if err := s.tokenRepo.Delete(record.Token); err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	return user, nil
}

// Login is the password fallback for users that set one.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput carries the optional profile fields of a PATCH.
type UpdateProfileInput struct {
	Name    *string
	ZipCode *string
	Image   *string
}

// UpdateProfile applies the provided fields to the user.
func (s *AuthService) UpdateProfile(userID uint64, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = input.Name
	}
	if input.ZipCode != nil {
		user.ZipCode = input.ZipCode
	}
	if input.Image != nil {
		user.Image = input.Image
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdatePassword sets or replaces the password fallback.
func (s *AuthService) UpdatePassword(userID uint64, password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hash := string(hashed)
	user.PasswordHash = &hash
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
