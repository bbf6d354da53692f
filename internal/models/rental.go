package models

import "time"

// Rental lifecycle states.
const (
	RentalPending   = "pending"
	RentalConfirmed = "confirmed"
	RentalActive    = "active"
	RentalCompleted = "completed"
	RentalCancelled = "cancelled"
)

// Rental is a camping-gear rental agreement between a user and a vendor.
type Rental struct {
	BaseModel

	ItemID   string      `gorm:"type:uuid;index;not null" json:"item_id"`
	Item     CampingItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	RenterID string      `gorm:"type:uuid;index;not null" json:"renter_id"`
	Renter   User        `gorm:"foreignKey:RenterID" json:"renter,omitempty"`
	VendorID string      `gorm:"type:uuid;index;not null" json:"vendor_id"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	TotalPrice    float64 `gorm:"not null" json:"total_price"`
	Status        string  `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	PaymentStatus string  `gorm:"type:varchar(16);default:'pending'" json:"payment_status"`

	DepositAmount float64 `gorm:"default:0" json:"deposit_amount"`
	DepositStatus string  `gorm:"type:varchar(16);default:'pending'" json:"deposit_status"`

	PickupLocation string `gorm:"type:varchar(255);not null" json:"pickup_location"`
	ReturnLocation string `gorm:"type:varchar(255);not null" json:"return_location"`
}
