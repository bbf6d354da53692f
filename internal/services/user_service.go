package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/models"
	"github.com/dumumtergo/server/pkg/crypto"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
	"github.com/dumumtergo/server/pkg/metrics"
)

// UserDTO is the public projection of a user account.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Genre     string `json:"genre,omitempty"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile,omitempty"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
	IsBanned  bool   `json:"is_banned"`
	BanReason string `json:"ban_reason,omitempty"`
}

// RegisterUserInput captures a signup request.
type RegisterUserInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Genre    string `json:"genre" validate:"omitempty,oneof=male female"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"omitempty,mobile"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput captures an email and password login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput captures mutable profile fields.
type UpdateProfileInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Genre  *string `json:"genre" validate:"omitempty,oneof=male female"`
	Mobile *string `json:"mobile" validate:"omitempty,mobile"`
	Image  *string `json:"image"`
}

// AuthResult bundles a signed token with the authenticated account.
type AuthResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserService manages user accounts and password credentials.
type UserService struct {
	db         *gorm.DB
	tokens     *auth.JWTService
	otpService *auth.OTPService
	googleAuth *auth.GoogleVerifier
}

// NewUserService constructs a UserService. The Google verifier is optional.
func NewUserService(db *gorm.DB, tokens *auth.JWTService, otpService *auth.OTPService, googleAuth *auth.GoogleVerifier) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("user service: token service is required")
	}
	return &UserService{db: db, tokens: tokens, otpService: otpService, googleAuth: googleAuth}, nil
}

// Register creates a new user account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(input.Name),
		Genre:    input.Genre,
		Email:    email,
		Mobile:   strings.TrimSpace(input.Mobile),
		Password: hash,
		Role:     models.RoleUser,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("Email is already registered")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return s.issueToken(user)
}

// Login verifies credentials and returns a signed access token. Banned
// accounts are rejected regardless of credential validity.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordAuthAttempt(auth.AccountUser, "failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if user.Password == "" || !crypto.VerifyPassword(user.Password, input.Password) {
		metrics.RecordAuthAttempt(auth.AccountUser, "failure")
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.IsBanned {
		metrics.RecordAuthAttempt(auth.AccountUser, "banned")
		return nil, apperrors.ErrAccountBanned
	}

	metrics.RecordAuthAttempt(auth.AccountUser, "success")
	return s.issueToken(user)
}

// LoginWithGoogle exchanges the OAuth code and signs the matching account in,
// creating it on first sight.
func (s *UserService) LoginWithGoogle(ctx context.Context, code string) (*AuthResult, error) {
	if s.googleAuth == nil {
		return nil, apperrors.ErrBadRequest.WithMessage("Google sign-in is not enabled")
	}

	identity, err := s.googleAuth.Exchange(ctx, code)
	if err != nil {
		metrics.RecordAuthAttempt(auth.AccountUser, "failure")
		return nil, apperrors.ErrInvalidCredentials.WithInternal(err)
	}
	if !identity.EmailVerified {
		metrics.RecordAuthAttempt(auth.AccountUser, "failure")
		return nil, apperrors.ErrInvalidCredentials.WithMessage("Google account email is not verified")
	}

	email := strings.ToLower(identity.Email)

	var user models.User
	err = s.db.WithContext(ctx).
		Where("google_id = ? OR email = ?", identity.Subject, email).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:     identity.Name,
			Email:    email,
			GoogleID: identity.Subject,
			Image:    identity.Picture,
			Role:     models.RoleUser,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("user service: create google user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("user service: load google user: %w", err)
	default:
		if user.GoogleID == "" {
			if err := s.db.WithContext(ctx).Model(&user).Update("google_id", identity.Subject).Error; err != nil {
				return nil, fmt.Errorf("user service: link google account: %w", err)
			}
			user.GoogleID = identity.Subject
		}
	}

	if user.IsBanned {
		metrics.RecordAuthAttempt(auth.AccountUser, "banned")
		return nil, apperrors.ErrAccountBanned
	}

	metrics.RecordAuthAttempt(auth.AccountUser, "success")
	return s.issueToken(user)
}

// RequestPasswordReset issues an OTP challenge delivered to the account
// email. The response is identical whether or not the email exists.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("password reset requested for unknown email")
			return "", nil
		}
		return "", fmt.Errorf("user service: load user: %w", err)
	}

	challenge, err := s.otpService.Issue(ctx, auth.IssueInput{
		AccountID:   user.ID,
		AccountType: auth.AccountUser,
		Purpose:     models.OTPPurposePasswordReset,
		Email:       user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("user service: issue reset code: %w", err)
	}
	return challenge.ID, nil
}

// ResetPassword verifies the OTP challenge and stores the new password hash.
func (s *UserService) ResetPassword(ctx context.Context, challengeID, code, newPassword string) error {
	challenge, err := s.otpService.Verify(ctx, challengeID, code)
	if err != nil {
		return err
	}
	if challenge.Purpose != models.OTPPurposePasswordReset || challenge.AccountType != auth.AccountUser {
		return apperrors.ErrInvalidOTP
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", challenge.AccountID).
		Update("password", hash)
	if result.Error != nil {
		return fmt.Errorf("user service: store password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.Password == "" || !crypto.VerifyPassword(user.Password, current) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := crypto.HashPassword(next)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hash).Error; err != nil {
		return fmt.Errorf("user service: store password: %w", err)
	}
	return nil
}

// GetProfile returns the account projection for the given user.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := mapUser(*user)
	return &dto, nil
}

// UpdateProfile applies the supplied profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Genre != nil {
		updates["genre"] = *input.Genre
	}
	if input.Mobile != nil {
		updates["mobile"] = strings.TrimSpace(*input.Mobile)
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("user service: update profile: %w", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *UserService) load(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) issueToken(user models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateAccessToken(auth.AccessTokenInput{
		UserID:      user.ID,
		AccountType: auth.AccountUser,
		Role:        user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("user service: sign token: %w", err)
	}
	return &AuthResult{Token: token, User: mapUser(user)}, nil
}

func mapUser(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Genre:     user.Genre,
		Email:     user.Email,
		Mobile:    user.Mobile,
		Image:     user.Image,
		Role:      user.Role,
		IsBanned:  user.IsBanned,
		BanReason: user.BanReason,
	}
}
