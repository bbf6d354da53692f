package models

import "gorm.io/datatypes"

// CampingItem is a piece of camping gear listed by a vendor for sale,
// rental, or both.
type CampingItem struct {
	BaseModel

	VendorID string `gorm:"type:uuid;index;not null" json:"vendor_id"`
	Vendor   Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"type:varchar(64);index;not null" json:"category"`

	IsForSale   bool    `gorm:"default:true" json:"is_for_sale"`
	IsForRent   bool    `gorm:"default:false" json:"is_for_rent"`
	Price       float64 `json:"price,omitempty"`
	RentalPrice float64 `json:"rental_price,omitempty"`
	Stock       int     `gorm:"default:0" json:"stock"`

	Images datatypes.JSON `json:"images"`
}
