package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is an organized camping outing published by an admin. Users browse
// upcoming events and sign up as participants.
type Event struct {
	BaseModel

	Place       string    `gorm:"type:varchar(255);not null" json:"place"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	Description string    `gorm:"type:text" json:"description"`

	Address   string         `gorm:"type:text;not null" json:"address"`
	Latitude  float64        `gorm:"not null" json:"latitude"`
	Longitude float64        `gorm:"not null" json:"longitude"`
	Images    datatypes.JSON `json:"images"`

	CreatedBy string `gorm:"type:uuid;index;not null" json:"created_by"`
	Creator   User   `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Participants []EventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
}

// EventParticipant records a user's signup; one row per (event,user).
type EventParticipant struct {
	BaseModel

	EventID string `gorm:"type:uuid;uniqueIndex:idx_event_participant;not null" json:"event_id"`
	UserID  string `gorm:"type:uuid;uniqueIndex:idx_event_participant;not null" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
