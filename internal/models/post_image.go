package models

import "time"

// PostImage is an uploaded image attached to a post. At most one image per
// post carries the representative flag; list views show that one.
type PostImage struct {
	ID               uint      `gorm:"primaryKey" json:"imageId"`
	ImageURL         string    `gorm:"not null" json:"imageUrl"`
	StorageKey       string    `gorm:"size:255" json:"-"`
	IsRepresentative bool      `gorm:"not null;default:false" json:"isRepresentative"`
	PostID           uint      `gorm:"not null;index" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (PostImage) TableName() string {
	return "post_images"
}
