package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment statuses of a sales-ledger line.
const (
	PaymentStatusPaid     = "Paid"
	PaymentStatusBorrowed = "Borrowed"
	PaymentStatusPartial  = "Partial"
	PaymentStatusReturned = "Returned"
)

// Payment methods. PaymentMethodNone is the sentinel recorded on borrowed
// lines until they are settled.
const (
	PaymentMethodCash  = "cash"
	PaymentMethodGCash = "gcash"
	PaymentMethodNone  = "-"
)

// SalesLog is one line of the append-only sales ledger, one per product per
// checkout. Return lines carry a negative QuantitySold and TotalAmount.
// RemainingAmount tracks the unpaid balance of a Borrowed or Partial line
// and reaches zero exactly when the line flips to Paid.
type SalesLog struct {
	gorm.Model
	LogCode         string          `gorm:"size:20;not null;uniqueIndex:idx_sales_logs_store_code" json:"log_code"`
	ProductID       uint            `gorm:"not null;index" json:"product_id"`
	ProductName     string          `gorm:"size:255;not null" json:"product_name"`
	ProductCode     string          `gorm:"size:20;not null" json:"product_code"`
	CustomerID      *uint           `gorm:"index" json:"customer_id,omitempty"`
	CustomerName    string          `gorm:"size:255;not null" json:"customer_name"`
	QuantitySold    int             `gorm:"not null" json:"quantity_sold"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"remaining_amount"`
	PaymentStatus   string          `gorm:"size:20;not null;index" json:"payment_status"`
	PaymentMethod   string          `gorm:"size:20;not null" json:"payment_method"`
	Note            string          `gorm:"size:255" json:"note"`
	UserID          uint            `gorm:"not null" json:"user_id"`
	StoreID         uint            `gorm:"not null;index;uniqueIndex:idx_sales_logs_store_code" json:"store_id"`
	SaleDate        time.Time       `gorm:"not null;index" json:"sale_date"`
}
