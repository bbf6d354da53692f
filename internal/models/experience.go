package models

import "gorm.io/datatypes"

// Experience is a camping story shared by a user on the social feed.
type Experience struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Title   string         `gorm:"type:varchar(255)" json:"title"`
	Content string         `gorm:"type:text;not null" json:"content"`
	Images  datatypes.JSON `json:"images"`
	Tags    datatypes.JSON `json:"tags"`

	// Optional spot coordinates when the story is tied to a place.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Likes    []ExperienceLike    `gorm:"foreignKey:ExperienceID" json:"likes,omitempty"`
	Comments []ExperienceComment `gorm:"foreignKey:ExperienceID" json:"comments,omitempty"`
}

// ExperienceLike records a single user's like; one row per (experience,user).
type ExperienceLike struct {
	BaseModel

	ExperienceID string `gorm:"type:uuid;uniqueIndex:idx_experience_like;not null" json:"experience_id"`
	UserID       string `gorm:"type:uuid;uniqueIndex:idx_experience_like;not null" json:"user_id"`
}

// ExperienceFavorite bookmarks an experience for a user; one row per
// (experience,user).
type ExperienceFavorite struct {
	BaseModel

	ExperienceID string `gorm:"type:uuid;uniqueIndex:idx_experience_favorite;not null" json:"experience_id"`
	UserID       string `gorm:"type:uuid;uniqueIndex:idx_experience_favorite;not null" json:"user_id"`
}

// ExperienceComment is a comment left on an experience.
type ExperienceComment struct {
	BaseModel

	ExperienceID string `gorm:"type:uuid;index;not null" json:"experience_id"`
	UserID       string `gorm:"type:uuid;not null" json:"user_id"`
	User         User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text         string `gorm:"type:text;not null" json:"text"`
}
