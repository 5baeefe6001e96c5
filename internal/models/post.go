package models

import (
	"time"
)

// Post represents a board post written by a member under a category.
type Post struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Title      string      `gorm:"size:200;not null" json:"title"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	ViewCnt    int         `gorm:"not null;default:0" json:"viewCnt"`
	MemberID   uint        `gorm:"not null;index" json:"memberId"`
	Member     Member      `gorm:"foreignKey:MemberID" json:"-"`
	CategoryID uint        `gorm:"not null;index" json:"categoryId"`
	Category   Category    `gorm:"foreignKey:CategoryID" json:"-"`
	Images     []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Hearts     []Heart     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Comments   []Comment   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	// HeartCnt is not persisted; computed at query time
	HeartCnt int `gorm:"->" json:"heartCnt"`
	// CommentCnt is not persisted; computed at query time
	CommentCnt int `gorm:"->" json:"commentCnt"`
	// HasHeart indicates whether the requesting member hearted this post (computed)
	HasHeart bool `gorm:"->" json:"hasHeart"`
	// Nickname mirrors the author's nickname in detail responses (not persisted)
	Nickname string `gorm:"-" json:"nickname,omitempty"`
	// IsOwner indicates whether the requesting member wrote this post (computed)
	IsOwner   bool      `gorm:"-" json:"isOwner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// RepresentativeImageURL returns the URL of the representative image, or ""
// when the post carries no representative image.
func (p *Post) RepresentativeImageURL() string {
	for i := range p.Images {
		if p.Images[i].IsRepresentative {
			return p.Images[i].ImageURL
		}
	}
	return ""
}
