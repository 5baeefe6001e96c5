// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Member represents a registered member of the gaethering community.
type Member struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Nickname        string    `gorm:"size:40;not null;uniqueIndex" json:"nickname"`
	Password        string    `gorm:"not null" json:"-"`
	Name            string    `gorm:"size:60" json:"name"`
	Phone           string    `gorm:"size:20" json:"phone"`
	Birth           string    `gorm:"size:10" json:"birth"`
	ProfileImageURL string    `json:"profile_image_url"`
	IsEmailAuth     bool      `gorm:"not null;default:false" json:"is_email_auth"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Member) TableName() string {
	return "members"
}
