package database

import (
	"errors"

	"gaethering/internal/models"

	"gorm.io/gorm"
)

// BuiltInCategories are the immutable board categories. Rows are inserted
// once at migration time and never modified afterwards.
var BuiltInCategories = []string{
	"자유게시판",
	"질문 있어요",
	"정보 공유",
	"자랑하기",
}

// SeedCategories inserts any missing built-in category rows.
func SeedCategories(db *gorm.DB) error {
	for _, name := range BuiltInCategories {
		var existing models.Category
		err := db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&models.Category{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}
