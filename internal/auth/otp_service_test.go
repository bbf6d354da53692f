package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/stretchr/testify/require"

	testutil "github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func deriveCode(t *testing.T, challenge *models.OTPChallenge) string {
	t.Helper()
	code, err := hotp.GenerateCodeCustom(challenge.Secret, challenge.Counter, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestOTPIssueAndVerify(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewOTPService(db, nil, OTPConfig{})
	require.NoError(t, err)

	challenge, err := svc.Issue(context.Background(), IssueInput{
		AccountID:   "vendor-1",
		AccountType: AccountVendor,
		Purpose:     "vendor_login",
	})
	require.NoError(t, err)
	require.NotEmpty(t, challenge.ID)
	require.NotEmpty(t, challenge.Secret)

	redeemed, err := svc.Verify(context.Background(), challenge.ID, deriveCode(t, challenge))
	require.NoError(t, err)
	require.Equal(t, "vendor-1", redeemed.AccountID)
	require.Equal(t, AccountVendor, redeemed.AccountType)
	require.True(t, redeemed.Consumed)
}

func TestOTPVerifyRejectsWrongCode(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewOTPService(db, nil, OTPConfig{})
	require.NoError(t, err)

	challenge, err := svc.Issue(context.Background(), IssueInput{AccountID: "vendor-1", Purpose: "vendor_login"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), challenge.ID, "000000")
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	var stored models.OTPChallenge
	require.NoError(t, db.First(&stored, "id = ?", challenge.ID).Error)
	require.Equal(t, 1, stored.Attempts)
}

func TestOTPVerifyRejectsConsumedChallenge(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewOTPService(db, nil, OTPConfig{})
	require.NoError(t, err)

	challenge, err := svc.Issue(context.Background(), IssueInput{AccountID: "vendor-1", Purpose: "vendor_login"})
	require.NoError(t, err)

	code := deriveCode(t, challenge)
	_, err = svc.Verify(context.Background(), challenge.ID, code)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), challenge.ID, code)
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestOTPVerifyRejectsExpiredChallenge(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	svc, err := NewOTPService(db, nil, OTPConfig{
		TTL:   5 * time.Minute,
		Clock: func() time.Time { return current },
	})
	require.NoError(t, err)

	challenge, err := svc.Issue(context.Background(), IssueInput{AccountID: "user-1", Purpose: "password_reset"})
	require.NoError(t, err)

	current = current.Add(6 * time.Minute)

	_, err = svc.Verify(context.Background(), challenge.ID, deriveCode(t, challenge))
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestOTPVerifyLocksAfterMaxAttempts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewOTPService(db, nil, OTPConfig{MaxAttempts: 2})
	require.NoError(t, err)

	challenge, err := svc.Issue(context.Background(), IssueInput{AccountID: "vendor-1", Purpose: "vendor_login"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), challenge.ID, "000000")
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	_, err = svc.Verify(context.Background(), challenge.ID, "000000")
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	// Correct code no longer redeems once the attempt budget is spent.
	_, err = svc.Verify(context.Background(), challenge.ID, deriveCode(t, challenge))
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestOTPIssueInvalidatesPreviousChallenge(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewOTPService(db, nil, OTPConfig{})
	require.NoError(t, err)

	first, err := svc.Issue(context.Background(), IssueInput{AccountID: "vendor-1", Purpose: "vendor_login"})
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), IssueInput{AccountID: "vendor-1", Purpose: "vendor_login"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), first.ID, deriveCode(t, first))
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	_, err = svc.Verify(context.Background(), second.ID, deriveCode(t, second))
	require.NoError(t, err)
}

func TestOTPPurgeExpired(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	svc, err := NewOTPService(db, nil, OTPConfig{
		TTL:   5 * time.Minute,
		Clock: func() time.Time { return current },
	})
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), IssueInput{AccountID: "vendor-1", Purpose: "vendor_login"})
	require.NoError(t, err)

	current = current.Add(10 * time.Minute)
	fresh, err := svc.Issue(context.Background(), IssueInput{AccountID: "user-1", Purpose: "password_reset"})
	require.NoError(t, err)

	removed, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var count int64
	require.NoError(t, db.Model(&models.OTPChallenge{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var remaining models.OTPChallenge
	require.NoError(t, db.First(&remaining, "id = ?", fresh.ID).Error)
}
