package models

import "gorm.io/datatypes"

// Recipient account kinds for notifications.
const (
	RecipientUser   = "user"
	RecipientVendor = "vendor"
)

// Notification event types.
const (
	NotificationNewReservation      = "new_reservation"
	NotificationReservationAccepted = "reservation_accepted"
	NotificationReservationRejected = "reservation_rejected"
	NotificationReservationCanceled = "reservation_cancelled"
	NotificationNewOrder            = "new_order"
	NotificationNewRental           = "new_rental"
	NotificationRentalConfirmed     = "rental_confirmed"
	NotificationExperienceLike      = "experience_like"
	NotificationExperienceComment   = "experience_comment"
	NotificationComplaintUpdate     = "complaint_update"
	NotificationAccountBanned       = "account_banned"
	NotificationCarBanned           = "car_banned"
)

// Notification is the durable record of a push event. It is written whenever
// a triggering business event occurs, independent of whether the recipient
// was connected for real-time delivery, and is only ever mutated to flip the
// read flag.
type Notification struct {
	BaseModel

	Recipient     string         `gorm:"type:uuid;index:idx_notifications_recipient;not null" json:"recipient"`
	RecipientType string         `gorm:"type:varchar(16);index:idx_notifications_recipient;not null" json:"recipient_type"`
	Type          string         `gorm:"type:varchar(64);not null" json:"type"`
	Data          datatypes.JSON `gorm:"not null" json:"data"`
	// Stored as is_read: "read" is a reserved word in MySQL.
	Read bool `gorm:"column:is_read;default:false;index" json:"read"`
}

// KnownNotificationType reports whether the supplied tag belongs to the
// closed notification type enumeration.
func KnownNotificationType(t string) bool {
	switch t {
	case NotificationNewReservation,
		NotificationReservationAccepted,
		NotificationReservationRejected,
		NotificationReservationCanceled,
		NotificationNewOrder,
		NotificationNewRental,
		NotificationRentalConfirmed,
		NotificationExperienceLike,
		NotificationExperienceComment,
		NotificationComplaintUpdate,
		NotificationAccountBanned,
		NotificationCarBanned:
		return true
	}
	return false
}
