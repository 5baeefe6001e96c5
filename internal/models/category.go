package models

// Category is an immutable lookup entity that groups board posts.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:60;not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
