package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation lifecycle states.
const (
	ReservationPending   = "pending"
	ReservationAccepted  = "accepted"
	ReservationRejected  = "rejected"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// Payment states shared by reservations, orders, and rentals.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Reservation is a car booking placed by a user with a vendor.
type Reservation struct {
	BaseModel

	CarID    string `gorm:"type:uuid;index;not null" json:"car_id"`
	Car      Car    `gorm:"foreignKey:CarID" json:"car,omitempty"`
	UserID   string `gorm:"type:uuid;index;not null" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	VendorID string `gorm:"type:uuid;index;not null" json:"vendor_id"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	TotalPrice    float64 `gorm:"not null" json:"total_price"`
	Status        string  `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	PaymentStatus string  `gorm:"type:varchar(16);default:'pending'" json:"payment_status"`

	ChildSeats        int    `gorm:"default:0" json:"child_seats"`
	AdditionalDrivers int    `gorm:"default:0" json:"additional_drivers"`
	Location          string `gorm:"type:varchar(255);not null" json:"location"`

	// DriverDetails carries the renter's licence and contact data captured at
	// booking time (denormalized, free-form).
	DriverDetails datatypes.JSON `json:"driver_details"`
}
