package models

import "time"

// OTP challenge purposes.
const (
	OTPPurposeVendorLogin   = "vendor_login"
	OTPPurposePasswordReset = "password_reset"
	OTPPurposeMobileChange  = "mobile_change"
)

// OTPChallenge stores the state of an outstanding one-time code. Codes are
// derived with HOTP from the per-challenge secret and counter, so the code
// itself is never persisted.
type OTPChallenge struct {
	BaseModel

	AccountID   string `gorm:"type:uuid;index;not null" json:"account_id"`
	AccountType string `gorm:"type:varchar(16);not null" json:"account_type"`
	Purpose     string `gorm:"type:varchar(32);not null" json:"purpose"`

	Secret  string `gorm:"type:varchar(64);not null" json:"-"`
	Counter uint64 `gorm:"default:0" json:"-"`

	Attempts  int       `gorm:"default:0" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Consumed  bool      `gorm:"default:false" json:"-"`
}

// Expired reports whether the challenge can no longer be redeemed.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
