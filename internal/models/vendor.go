package models

import "time"

// Vendor represents a merchant account selling or renting out gear and cars.
// Vendors authenticate with their mobile number and a one-time code rather
// than a password.
type Vendor struct {
	BaseModel

	Mobile    string `gorm:"type:varchar(32);uniqueIndex;not null" json:"mobile"`
	NewMobile string `gorm:"type:varchar(32)" json:"-"`
	Email     string `gorm:"type:varchar(255);index" json:"email,omitempty"`

	ProfileCompleted bool   `gorm:"default:false" json:"profile_completed"`
	BusinessName     string `gorm:"type:varchar(255)" json:"business_name,omitempty"`
	Description      string `gorm:"type:text" json:"description,omitempty"`
	BusinessAddress  string `gorm:"type:text" json:"business_address,omitempty"`
	Image            string `gorm:"type:text;default:'/images/default.png'" json:"image"`

	SubscriptionStatus string     `gorm:"type:varchar(16);default:'inactive'" json:"subscription_status"`
	SubscriptionUntil  *time.Time `json:"subscription_until,omitempty"`

	IsBanned  bool       `gorm:"default:false" json:"is_banned"`
	BanReason string     `gorm:"type:text" json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
}

// Vendor subscription states.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionExpired  = "expired"
)
