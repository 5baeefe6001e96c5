package models

import "time"

// Comment represents a member's comment on a post.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"commentId"`
	Content  string `gorm:"type:text;not null" json:"content"`
	MemberID uint   `gorm:"not null;index" json:"memberId"`
	Member   Member `gorm:"foreignKey:MemberID" json:"-"`
	PostID   uint   `gorm:"not null;index" json:"-"`
	// Nickname is not persisted; joined from the author at query time
	Nickname string `gorm:"->" json:"nickname"`
	// IsOwner indicates whether the requesting member wrote this comment (computed)
	IsOwner   bool      `gorm:"-" json:"isOwner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
