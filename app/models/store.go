package models

import "gorm.io/gorm"

// Store is a tenant. Every other record in the system is scoped by StoreID.
type Store struct {
	gorm.Model
	StoreCode    string `gorm:"size:20;uniqueIndex;not null" json:"store_code"`
	StoreName    string `gorm:"size:255;not null" json:"store_name"`
	StoreAddress string `gorm:"size:255" json:"store_address"`
}
