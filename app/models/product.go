package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue item. QuantityInStock may only be mutated through
// the sales service so every change lands in the stock ledger; it never goes
// below zero.
type Product struct {
	gorm.Model
	ProductCode     string          `gorm:"size:20;not null;uniqueIndex:idx_products_store_code" json:"product_code"`
	ProductName     string          `gorm:"size:255;not null;index" json:"product_name"`
	CategoryID      uint            `gorm:"not null;index" json:"category_id"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	SalePrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sale_price"`
	QuantityInStock int             `gorm:"not null;default:0" json:"quantity_in_stock"`
	ReorderLevel    int             `gorm:"not null;default:0" json:"reorder_level"`
	ProductImage    string          `gorm:"size:255" json:"product_image"`
	StoreID         uint            `gorm:"not null;index;uniqueIndex:idx_products_store_code" json:"store_id"`
}
