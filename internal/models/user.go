package models

import "time"

// User represents an end-user (buyer/renter) account.
type User struct {
	BaseModel

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Genre    string `gorm:"type:varchar(32)" json:"genre,omitempty"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Mobile   string `gorm:"type:varchar(32)" json:"mobile,omitempty"`
	Password string `gorm:"type:varchar(255)" json:"-"`
	GoogleID string `gorm:"type:varchar(128);index" json:"-"`
	Image    string `gorm:"type:text" json:"image"`

	Role     string `gorm:"type:varchar(16);default:'user'" json:"role"`
	Verified bool   `gorm:"default:false" json:"verified"`

	IsBanned  bool       `gorm:"default:false" json:"is_banned"`
	BanReason string     `gorm:"type:text" json:"ban_reason,omitempty"`
	BannedAt  *time.Time `json:"banned_at,omitempty"`
}

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
