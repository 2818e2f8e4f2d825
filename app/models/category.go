package models

import "gorm.io/gorm"

// Category groups products within a store. The (name, store) pair is unique
// case-insensitively (enforced in the service layer); the code is unique per
// store by constraint.
type Category struct {
	gorm.Model
	CategoryCode string `gorm:"size:20;not null;uniqueIndex:idx_categories_store_code" json:"category_code"`
	CategoryName string `gorm:"size:100;not null" json:"category_name"`
	StoreID      uint   `gorm:"not null;index;uniqueIndex:idx_categories_store_code" json:"store_id"`
}
