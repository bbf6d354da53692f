package auth

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
	apperrors "github.com/dumumtergo/server/pkg/errors"
	"github.com/dumumtergo/server/pkg/logger"
	"github.com/dumumtergo/server/pkg/mail"
)

const (
	defaultOTPDigits      = 6
	defaultOTPTTL         = 5 * time.Minute
	defaultOTPMaxAttempts = 5
	otpSecretBytes        = 20
)

// OTPConfig tunes one-time code issuance.
type OTPConfig struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
	Clock       func() time.Time
}

// OTPService issues and verifies HOTP one-time codes used for vendor login
// and password resets. Codes are derived from a per-challenge secret, so the
// database never stores the code itself.
type OTPService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	digits      otp.Digits
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	log         *zap.Logger
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, cfg OTPConfig) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}

	digits := cfg.Digits
	if digits <= 0 {
		digits = defaultOTPDigits
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultOTPTTL
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultOTPMaxAttempts
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &OTPService{
		db:          db,
		mailer:      mailer,
		digits:      otp.Digits(digits),
		ttl:         ttl,
		maxAttempts: attempts,
		now:         now,
		log:         logger.WithModule("otp"),
	}, nil
}

// IssueInput describes the challenge to create.
type IssueInput struct {
	AccountID   string
	AccountType string
	Purpose     string
	Email       string // destination for the code; may be empty when SMTP is disabled
}

// Issue creates a fresh challenge, derives its code, and sends it to the
// account's email address. The previous outstanding challenge for the same
// account and purpose is invalidated.
func (s *OTPService) Issue(ctx context.Context, input IssueInput) (*models.OTPChallenge, error) {
	if strings.TrimSpace(input.AccountID) == "" {
		return nil, errors.New("otp service: account id is required")
	}
	if input.Purpose == "" {
		return nil, errors.New("otp service: purpose is required")
	}

	secret, err := generateOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("otp service: generate secret: %w", err)
	}

	challenge := models.OTPChallenge{
		AccountID:   input.AccountID,
		AccountType: input.AccountType,
		Purpose:     input.Purpose,
		Secret:      secret,
		Counter:     1,
		ExpiresAt:   s.now().Add(s.ttl),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTPChallenge{}).
			Where("account_id = ? AND purpose = ? AND consumed = ?", input.AccountID, input.Purpose, false).
			Update("consumed", true).Error; err != nil {
			return err
		}
		return tx.Create(&challenge).Error
	})
	if err != nil {
		return nil, fmt.Errorf("otp service: create challenge: %w", err)
	}

	code, err := s.code(&challenge)
	if err != nil {
		return nil, fmt.Errorf("otp service: derive code: %w", err)
	}

	s.deliver(ctx, input.Email, input.Purpose, code)
	return &challenge, nil
}

// Verify redeems a challenge. On success the challenge is consumed and the
// owning account identity is returned; on failure the attempt counter is
// advanced and ErrInvalidOTP is returned.
func (s *OTPService) Verify(ctx context.Context, challengeID, code string) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	if err := s.db.WithContext(ctx).First(&challenge, "id = ?", strings.TrimSpace(challengeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, fmt.Errorf("otp service: load challenge: %w", err)
	}

	if challenge.Consumed || challenge.Expired(s.now()) || challenge.Attempts >= s.maxAttempts {
		return nil, apperrors.ErrInvalidOTP
	}

	valid, err := hotp.ValidateCustom(strings.TrimSpace(code), challenge.Counter, challenge.Secret, hotp.ValidateOpts{
		Digits:    s.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !valid {
		if err := s.db.WithContext(ctx).Model(&challenge).
			Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			s.log.Warn("record failed otp attempt", zap.Error(err))
		}
		return nil, apperrors.ErrInvalidOTP
	}

	if err := s.db.WithContext(ctx).Model(&challenge).Update("consumed", true).Error; err != nil {
		return nil, fmt.Errorf("otp service: consume challenge: %w", err)
	}

	challenge.Consumed = true
	return &challenge, nil
}

// PurgeExpired removes stale challenges; used by the maintenance scheduler.
func (s *OTPService) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR consumed = ?", s.now(), true).
		Delete(&models.OTPChallenge{})
	if result.Error != nil {
		return 0, fmt.Errorf("otp service: purge expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *OTPService) code(challenge *models.OTPChallenge) (string, error) {
	return hotp.GenerateCodeCustom(challenge.Secret, challenge.Counter, hotp.ValidateOpts{
		Digits:    s.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

func (s *OTPService) deliver(ctx context.Context, email, purpose, code string) {
	if s.mailer == nil || strings.TrimSpace(email) == "" {
		s.log.Debug("otp issued without delivery channel", zap.String("purpose", purpose))
		return
	}

	msg := mail.Message{
		To:      []string{email},
		Subject: "Your Dumum Tergo verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrSMTPDisabled) {
			s.log.Debug("smtp disabled; otp not emailed", zap.String("purpose", purpose))
			return
		}
		s.log.Warn("send otp email", zap.String("purpose", purpose), zap.Error(err))
	}
}

func generateOTPSecret() (string, error) {
	buf := make([]byte, otpSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
