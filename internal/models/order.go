package models

import "gorm.io/datatypes"

// Payment methods accepted at checkout.
const (
	PaymentMethodCreditCard = "credit_card"
	PaymentMethodPaypal     = "paypal"
	PaymentMethodOnDelivery = "on_delivery"
)

// Order lifecycle states.
const (
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// OrderLine captures one purchased item with the price frozen at purchase time.
type OrderLine struct {
	ItemID          string  `json:"item_id"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// Order is a camping-gear purchase placed by a user.
type Order struct {
	BaseModel

	BuyerID  string `gorm:"type:uuid;index;not null" json:"buyer_id"`
	Buyer    User   `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	VendorID string `gorm:"type:uuid;index;not null" json:"vendor_id"`

	// Items is a JSON array of OrderLine values.
	Items       datatypes.JSON `gorm:"not null" json:"items"`
	TotalAmount float64        `gorm:"not null" json:"total_amount"`

	ShippingAddress string `gorm:"type:text;not null" json:"shipping_address"`
	PaymentMethod   string `gorm:"type:varchar(16);not null" json:"payment_method"`
	PaymentStatus   string `gorm:"type:varchar(16);default:'pending'" json:"payment_status"`
	OrderStatus     string `gorm:"type:varchar(16);default:'processing'" json:"order_status"`
}
