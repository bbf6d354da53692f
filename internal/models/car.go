package models

import (
	"time"

	"gorm.io/datatypes"
)

// Transmission options.
const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"
)

// Mileage policies.
const (
	MileageLimited   = "limited"
	MileageUnlimited = "unlimited"
)

// DateRange marks a period during which a car cannot be booked.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Car is a rental vehicle listed by a vendor.
type Car struct {
	BaseModel

	VendorID string `gorm:"type:uuid;index;not null" json:"vendor_id"`
	Vendor   Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`

	Brand              string `gorm:"type:varchar(64);not null" json:"brand"`
	Model              string `gorm:"type:varchar(64);not null" json:"model"`
	Year               int    `gorm:"not null" json:"year"`
	RegistrationNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"registration_number"`
	Color              string `gorm:"type:varchar(32)" json:"color"`
	Seats              int    `gorm:"not null" json:"seats"`
	Transmission       string `gorm:"type:varchar(16);default:'manual'" json:"transmission"`
	MileagePolicy      string `gorm:"type:varchar(16);default:'unlimited'" json:"mileage_policy"`
	MileageLimit       int    `json:"mileage_limit,omitempty"`

	PricePerDay float64 `gorm:"not null" json:"price_per_day"`
	Deposit     float64 `gorm:"default:2000" json:"deposit"`
	Location    string  `gorm:"type:varchar(255)" json:"location"`

	Images   datatypes.JSON `json:"images"`
	Features datatypes.JSON `json:"features"`

	IsAvailable bool `gorm:"default:true" json:"is_available"`

	IsBanned  bool       `gorm:"default:false" json:"is_banned"`
	BanReason string     `gorm:"type:text" json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
	BannedBy  string     `gorm:"type:uuid" json:"banned_by,omitempty"`

	// UnavailableDates holds accepted booking windows as a JSON array of
	// DateRange values. Availability checks decode it in the service layer.
	UnavailableDates datatypes.JSON `json:"unavailable_dates"`
}
