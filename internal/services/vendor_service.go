package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/metrics"
)

// VendorDTO is the public projection of a vendor account.
type VendorDTO struct {
	ID                 string `json:"id"`
	Mobile             string `json:"mobile"`
	Email              string `json:"email,omitempty"`
	ProfileCompleted   bool   `json:"profile_completed"`
	BusinessName       string `json:"business_name,omitempty"`
	Description        string `json:"description,omitempty"`
	BusinessAddress    string `json:"business_address,omitempty"`
	Image              string `json:"image"`
	SubscriptionStatus string `json:"subscription_status"`
	IsBanned           bool   `json:"is_banned"`
}

// RequestVendorLoginInput starts the OTP login flow for a vendor mobile number.
type RequestVendorLoginInput struct {
	Mobile string `json:"mobile" validate:"required,mobile"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// VerifyVendorLoginInput completes the OTP login flow.
type VerifyVendorLoginInput struct {
	ChallengeID string `json:"challenge_id" validate:"required"`
	Code        string `json:"code" validate:"required,min=4,max=10"`
}

// CompleteVendorProfileInput carries the fields a vendor supplies on first login.
type CompleteVendorProfileInput struct {
	BusinessName    string `json:"business_name" validate:"required,min=2,max=255"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	BusinessAddress string `json:"business_address" validate:"omitempty,max=500"`
	Email           string `json:"email" validate:"omitempty,email"`
	Image           string `json:"image"`
}

// VendorAuthResult bundles a signed token with the authenticated vendor.
type VendorAuthResult struct {
	Token  string    `json:"token"`
	Vendor VendorDTO `json:"vendor"`
}

// VendorService manages vendor accounts and the passwordless login flow.
type VendorService struct {
	db         *gorm.DB
	tokens     *auth.JWTService
	otpService *auth.OTPService
}

// NewVendorService constructs a VendorService.
func NewVendorService(db *gorm.DB, tokens *auth.JWTService, otpService *auth.OTPService) (*VendorService, error) {
	if db == nil {
		return nil, errors.New("vendor service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("vendor service: token service is required")
	}
	if otpService == nil {
		return nil, errors.New("vendor service: otp service is required")
	}
	return &VendorService{db: db, tokens: tokens, otpService: otpService}, nil
}

// RequestLogin looks up or creates the vendor for the mobile number and
// issues a login challenge. The vendor record is created eagerly so the
// first-time flow and the returning flow share one code path.
func (s *VendorService) RequestLogin(ctx context.Context, input RequestVendorLoginInput) (string, error) {
	mobile := strings.TrimSpace(input.Mobile)

	var vendor models.Vendor
	err := s.db.WithContext(ctx).Where("mobile = ?", mobile).First(&vendor).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		vendor = models.Vendor{Mobile: mobile, Email: strings.ToLower(strings.TrimSpace(input.Email))}
		if err := s.db.WithContext(ctx).Create(&vendor).Error; err != nil {
			if isUniqueConstraintError(err) {
				return "", apperrors.ErrConflict.WithMessage("Mobile number is already registered")
			}
			return "", fmt.Errorf("vendor service: create vendor: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("vendor service: load vendor: %w", err)
	}

	if vendor.IsBanned {
		metrics.RecordAuthAttempt(auth.AccountVendor, "banned")
		return "", apperrors.ErrAccountBanned
	}

	challenge, err := s.otpService.Issue(ctx, auth.IssueInput{
		AccountID:   vendor.ID,
		AccountType: auth.AccountVendor,
		Purpose:     models.OTPPurposeVendorLogin,
		Email:       vendor.Email,
	})
	if err != nil {
		return "", fmt.Errorf("vendor service: issue login code: %w", err)
	}
	return challenge.ID, nil
}

// VerifyLogin redeems the login challenge and returns a signed access token.
func (s *VendorService) VerifyLogin(ctx context.Context, input VerifyVendorLoginInput) (*VendorAuthResult, error) {
	challenge, err := s.otpService.Verify(ctx, input.ChallengeID, input.Code)
	if err != nil {
		metrics.RecordAuthAttempt(auth.AccountVendor, "failure")
		return nil, err
	}
	if challenge.Purpose != models.OTPPurposeVendorLogin || challenge.AccountType != auth.AccountVendor {
		metrics.RecordAuthAttempt(auth.AccountVendor, "failure")
		return nil, apperrors.ErrInvalidOTP
	}

	vendor, err := s.load(ctx, challenge.AccountID)
	if err != nil {
		return nil, err
	}
	if vendor.IsBanned {
		metrics.RecordAuthAttempt(auth.AccountVendor, "banned")
		return nil, apperrors.ErrAccountBanned
	}

	token, err := s.tokens.GenerateAccessToken(auth.AccessTokenInput{
		UserID:      vendor.ID,
		AccountType: auth.AccountVendor,
	})
	if err != nil {
		return nil, fmt.Errorf("vendor service: sign token: %w", err)
	}

	metrics.RecordAuthAttempt(auth.AccountVendor, "success")
	return &VendorAuthResult{Token: token, Vendor: mapVendor(*vendor)}, nil
}

// CompleteProfile fills in the business details and marks the profile done.
func (s *VendorService) CompleteProfile(ctx context.Context, vendorID string, input CompleteVendorProfileInput) (*VendorDTO, error) {
	vendor, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"business_name":     strings.TrimSpace(input.BusinessName),
		"description":       input.Description,
		"business_address":  input.BusinessAddress,
		"profile_completed": true,
	}
	if input.Email != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.Image != "" {
		updates["image"] = input.Image
	}

	if err := s.db.WithContext(ctx).Model(vendor).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("vendor service: complete profile: %w", err)
	}
	return s.GetProfile(ctx, vendorID)
}

// RequestMobileChange issues a challenge that, once verified, swaps the
// vendor mobile number for the pending one.
func (s *VendorService) RequestMobileChange(ctx context.Context, vendorID, newMobile string) (string, error) {
	vendor, err := s.load(ctx, vendorID)
	if err != nil {
		return "", err
	}

	newMobile = strings.TrimSpace(newMobile)
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vendor{}).Where("mobile = ?", newMobile).Count(&count).Error; err != nil {
		return "", fmt.Errorf("vendor service: check mobile: %w", err)
	}
	if count > 0 {
		return "", apperrors.ErrConflict.WithMessage("Mobile number is already registered")
	}

	if err := s.db.WithContext(ctx).Model(vendor).Update("new_mobile", newMobile).Error; err != nil {
		return "", fmt.Errorf("vendor service: stage mobile: %w", err)
	}

	challenge, err := s.otpService.Issue(ctx, auth.IssueInput{
		AccountID:   vendor.ID,
		AccountType: auth.AccountVendor,
		Purpose:     models.OTPPurposeMobileChange,
		Email:       vendor.Email,
	})
	if err != nil {
		return "", fmt.Errorf("vendor service: issue change code: %w", err)
	}
	return challenge.ID, nil
}

// VerifyMobileChange redeems the mobile change challenge and commits the swap.
func (s *VendorService) VerifyMobileChange(ctx context.Context, vendorID, challengeID, code string) (*VendorDTO, error) {
	challenge, err := s.otpService.Verify(ctx, challengeID, code)
	if err != nil {
		return nil, err
	}
	if challenge.Purpose != models.OTPPurposeMobileChange || challenge.AccountID != vendorID {
		return nil, apperrors.ErrInvalidOTP
	}

	vendor, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.NewMobile == "" {
		return nil, apperrors.ErrBadRequest.WithMessage("No mobile change is pending")
	}

	updates := map[string]any{"mobile": vendor.NewMobile, "new_mobile": ""}
	if err := s.db.WithContext(ctx).Model(vendor).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage("Mobile number is already registered")
		}
		return nil, fmt.Errorf("vendor service: commit mobile: %w", err)
	}
	return s.GetProfile(ctx, vendorID)
}

// GetProfile returns the vendor projection.
func (s *VendorService) GetProfile(ctx context.Context, vendorID string) (*VendorDTO, error) {
	vendor, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	dto := mapVendor(*vendor)
	return &dto, nil
}

func (s *VendorService) load(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.WithContext(ctx).Where("id = ?", vendorID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("vendor service: load vendor: %w", err)
	}
	return &vendor, nil
}

func mapVendor(vendor models.Vendor) VendorDTO {
	return VendorDTO{
		ID:                 vendor.ID,
		Mobile:             vendor.Mobile,
		Email:              vendor.Email,
		ProfileCompleted:   vendor.ProfileCompleted,
		BusinessName:       vendor.BusinessName,
		Description:        vendor.Description,
		BusinessAddress:    vendor.BusinessAddress,
		Image:              vendor.Image,
		SubscriptionStatus: vendor.SubscriptionStatus,
		IsBanned:           vendor.IsBanned,
	}
}
