package models

// Rating is a user's score for a vendor; one row per (user,vendor) pair,
// updated in place when the user rates again.
type Rating struct {
	BaseModel

	UserID   string `gorm:"type:uuid;uniqueIndex:idx_rating_user_vendor;not null" json:"user_id"`
	VendorID string `gorm:"type:uuid;uniqueIndex:idx_rating_user_vendor;index;not null" json:"vendor_id"`

	Score   int    `gorm:"not null" json:"score"`
	Comment string `gorm:"type:text" json:"comment,omitempty"`
}
