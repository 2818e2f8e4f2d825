package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalkInName is the reserved pseudo-customer used for anonymous cash sales.
// It can never hold credit.
const WalkInName = "Walk-in"

// Customer is a named credit customer, created lazily the first time a
// walk-in buyer borrows. TotalUnpaid is the aggregate of RemainingAmount
// across the customer's open sales-ledger lines; settlement recomputes it
// from the ledger rather than trusting decrements.
type Customer struct {
	gorm.Model
	CustomerCode string          `gorm:"size:20;not null;uniqueIndex:idx_customers_store_code" json:"customer_code"`
	CustomerName string          `gorm:"size:255;not null" json:"customer_name"`
	ContactInfo  string          `gorm:"size:100" json:"contact_info"`
	TotalUnpaid  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_unpaid"`
	StoreID      uint            `gorm:"not null;index;uniqueIndex:idx_customers_store_code" json:"store_id"`
}
