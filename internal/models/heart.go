package models

import "time"

// Heart is a like relation between a member and a post.
// The (member_id, post_id) pair is unique.
type Heart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemberID  uint      `gorm:"not null;uniqueIndex:idx_hearts_member_post" json:"member_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_hearts_member_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Heart) TableName() string {
	return "hearts"
}
