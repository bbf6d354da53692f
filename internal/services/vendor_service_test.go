package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
)

func newVendorFixture(t *testing.T) (*gorm.DB, *VendorService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	tokens, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "dumumtergo-test"})
	require.NoError(t, err)
	otpSvc, err := auth.NewOTPService(db, nil, auth.OTPConfig{})
	require.NoError(t, err)
	svc, err := NewVendorService(db, tokens, otpSvc)
	require.NoError(t, err)

	return db, svc
}

func TestVendorLoginFlowCreatesAccount(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	challengeID, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21611111111"})
	require.NoError(t, err)

	code := challengeCode(t, db, challengeID)
	result, err := svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: challengeID, Code: code})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "+21611111111", result.Vendor.Mobile)
	require.False(t, result.Vendor.ProfileCompleted)
}

func TestVendorLoginReusesExistingAccount(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	first, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21622222222"})
	require.NoError(t, err)
	firstResult, err := svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: first, Code: challengeCode(t, db, first)})
	require.NoError(t, err)

	second, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21622222222"})
	require.NoError(t, err)
	secondResult, err := svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: second, Code: challengeCode(t, db, second)})
	require.NoError(t, err)

	require.Equal(t, firstResult.Vendor.ID, secondResult.Vendor.ID)
}

func TestVendorLoginRejectsWrongCode(t *testing.T) {
	_, svc := newVendorFixture(t)

	ctx := context.Background()
	challengeID, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21633333333"})
	require.NoError(t, err)

	_, err = svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: challengeID, Code: "000000"})
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestVendorLoginConsumedChallengeCannotBeReplayed(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	challengeID, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21644444444"})
	require.NoError(t, err)

	code := challengeCode(t, db, challengeID)
	_, err = svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: challengeID, Code: code})
	require.NoError(t, err)

	_, err = svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: challengeID, Code: code})
	require.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestVendorLoginRejectsBannedVendor(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	challengeID, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21655555555"})
	require.NoError(t, err)
	_, err = svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: challengeID, Code: challengeCode(t, db, challengeID)})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Vendor{}).
		Where("mobile = ?", "+21655555555").
		Update("is_banned", true).Error)

	_, err = svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21655555555"})
	require.ErrorIs(t, err, apperrors.ErrAccountBanned)
}

func TestVendorCompleteProfile(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	challengeID, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21666666666"})
	require.NoError(t, err)
	result, err := svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: challengeID, Code: challengeCode(t, db, challengeID)})
	require.NoError(t, err)

	profile, err := svc.CompleteProfile(ctx, result.Vendor.ID, CompleteVendorProfileInput{
		BusinessName:    "Sahara Rentals",
		Description:     "Cars and camping gear in the south",
		BusinessAddress: "Douz",
		Email:           "Contact@Sahara.tn",
	})
	require.NoError(t, err)
	require.True(t, profile.ProfileCompleted)
	require.Equal(t, "Sahara Rentals", profile.BusinessName)
	require.Equal(t, "contact@sahara.tn", profile.Email)
}

func TestVendorMobileChangeFlow(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	loginChallenge, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21677777777"})
	require.NoError(t, err)
	result, err := svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: loginChallenge, Code: challengeCode(t, db, loginChallenge)})
	require.NoError(t, err)

	changeChallenge, err := svc.RequestMobileChange(ctx, result.Vendor.ID, "+21688888888")
	require.NoError(t, err)

	profile, err := svc.VerifyMobileChange(ctx, result.Vendor.ID, changeChallenge, challengeCode(t, db, changeChallenge))
	require.NoError(t, err)
	require.Equal(t, "+21688888888", profile.Mobile)
}

func TestVendorMobileChangeRejectsTakenNumber(t *testing.T) {
	db, svc := newVendorFixture(t)

	ctx := context.Background()
	otherChallenge, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21699999999"})
	require.NoError(t, err)
	_, err = svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: otherChallenge, Code: challengeCode(t, db, otherChallenge)})
	require.NoError(t, err)

	loginChallenge, err := svc.RequestLogin(ctx, RequestVendorLoginInput{Mobile: "+21600000000"})
	require.NoError(t, err)
	result, err := svc.VerifyLogin(ctx, VerifyVendorLoginInput{ChallengeID: loginChallenge, Code: challengeCode(t, db, loginChallenge)})
	require.NoError(t, err)

	_, err = svc.RequestMobileChange(ctx, result.Vendor.ID, "+21699999999")
	require.ErrorIs(t, err, apperrors.ErrConflict)
}
