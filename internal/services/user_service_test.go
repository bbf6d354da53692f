package services

import (
	"context"
	"testing"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func newUserFixture(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	tokens, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "dumumtergo-test"})
	require.NoError(t, err)
	otpSvc, err := auth.NewOTPService(db, nil, auth.OTPConfig{})
	require.NoError(t, err)
	svc, err := NewUserService(db, tokens, otpSvc, nil)
	require.NoError(t, err)

	return db, svc
}

// challengeCode derives the current code for a stored challenge the same way
// the issuing side does.
func challengeCode(t *testing.T, db *gorm.DB, challengeID string) string {
	t.Helper()

	var challenge models.OTPChallenge
	require.NoError(t, db.Where("id = ?", challengeID).First(&challenge).Error)

	code, err := hotp.GenerateCodeCustom(challenge.Secret, challenge.Counter, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestUserRegisterAndLogin(t *testing.T) {
	_, svc := newUserFixture(t)

	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterUserInput{
		Name:     "Amine Ben Salah",
		Email:    "Amine@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, "amine@example.com", registered.User.Email)
	require.Equal(t, models.RoleUser, registered.User.Role)

	result, err := svc.Login(ctx, LoginInput{Email: "amine@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, result.User.ID)
}

func TestUserRegisterRejectsDuplicateEmail(t *testing.T) {
	_, svc := newUserFixture(t)

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterUserInput{Name: "A", Email: "dup@example.com", Password: "password-1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterUserInput{Name: "B", Email: "dup@example.com", Password: "password-2"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserLoginRejectsWrongPassword(t *testing.T) {
	_, svc := newUserFixture(t)

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterUserInput{Name: "A", Email: "a@example.com", Password: "password-1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password-1"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserLoginRejectsBannedAccount(t *testing.T) {
	db, svc := newUserFixture(t)

	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterUserInput{Name: "A", Email: "banned@example.com", Password: "password-1"})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", registered.User.ID).
		Update("is_banned", true).Error)

	_, err = svc.Login(ctx, LoginInput{Email: "banned@example.com", Password: "password-1"})
	require.ErrorIs(t, err, apperrors.ErrAccountBanned)
}

func TestUserPasswordResetFlow(t *testing.T) {
	db, svc := newUserFixture(t)

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterUserInput{Name: "A", Email: "reset@example.com", Password: "old-password"})
	require.NoError(t, err)

	challengeID, err := svc.RequestPasswordReset(ctx, "reset@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, challengeID)

	code := challengeCode(t, db, challengeID)
	require.NoError(t, svc.ResetPassword(ctx, challengeID, code, "new-password"))

	_, err = svc.Login(ctx, LoginInput{Email: "reset@example.com", Password: "old-password"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "reset@example.com", Password: "new-password"})
	require.NoError(t, err)
}

func TestUserPasswordResetUnknownEmailIsSilent(t *testing.T) {
	_, svc := newUserFixture(t)

	challengeID, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.Empty(t, challengeID)
}

func TestUserPasswordResetRejectsBadCode(t *testing.T) {
	_, svc := newUserFixture(t)

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterUserInput{Name: "A", Email: "badcode@example.com", Password: "old-password"})
	require.NoError(t, err)

	challengeID, err := svc.RequestPasswordReset(ctx, "badcode@example.com")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, challengeID, "000000", "new-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestUserUpdateProfile(t *testing.T) {
	_, svc := newUserFixture(t)

	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterUserInput{Name: "Old Name", Email: "profile@example.com", Password: "password-1"})
	require.NoError(t, err)

	name := "New Name"
	mobile := "+21655555555"
	updated, err := svc.UpdateProfile(ctx, registered.User.ID, UpdateProfileInput{Name: &name, Mobile: &mobile})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, "+21655555555", updated.Mobile)
}

func TestUserChangePasswordVerifiesCurrent(t *testing.T) {
	_, svc := newUserFixture(t)

	ctx := context.Background()
	registered, err := svc.Register(ctx, RegisterUserInput{Name: "A", Email: "change@example.com", Password: "current-pass"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.User.ID, "wrong", "next-pass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, registered.User.ID, "current-pass", "next-pass"))

	_, err = svc.Login(ctx, LoginInput{Email: "change@example.com", Password: "next-pass"})
	require.NoError(t, err)
}
