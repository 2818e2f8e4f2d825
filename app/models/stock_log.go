package models

import (
	"time"

	"gorm.io/gorm"
)

// Stock change types. Each maps to its own log-code prefix so the codes
// read as their own series per kind of movement.
const (
	StockChangeNew       = "New"
	StockChangeRemoved   = "Removed"
	StockChangeCorrected = "Corrected"
	StockChangeRestocked = "Restocked"
	StockChangeSold      = "Sold"
	StockChangeBorrowed  = "Borrowed"
	StockChangeReturned  = "Returned"
)

// StockLogPrefix returns the log-code prefix for a stock change type.
// Unknown types fall back to the correction prefix so a log line is never
// silently dropped.
func StockLogPrefix(changeType string) string {
	switch changeType {
	case StockChangeNew:
		return "LNEW"
	case StockChangeRemoved:
		return "LRMV"
	case StockChangeCorrected:
		return "LCOR"
	case StockChangeRestocked:
		return "LRST"
	case StockChangeSold:
		return "LSLD"
	case StockChangeBorrowed:
		return "LBRW"
	case StockChangeReturned:
		return "LRTN"
	default:
		return "LCOR"
	}
}

// StockLog is one line of the append-only stock ledger. Product name and
// code are snapshotted so history survives later edits or deletion of the
// product. Rows are never updated after insert, with one exception: a
// Borrowed line flips to Sold when the credit it backs is settled, via
// SalesLogID.
type StockLog struct {
	gorm.Model
	LogCode         string    `gorm:"size:20;not null;uniqueIndex:idx_stock_logs_store_code" json:"log_code"`
	ProductID       uint      `gorm:"not null;index" json:"product_id"`
	ProductName     string    `gorm:"size:255;not null" json:"product_name"`
	ProductCode     string    `gorm:"size:20;not null" json:"product_code"`
	ChangeType      string    `gorm:"size:20;not null;index" json:"change_type"`
	QuantityChanged int       `gorm:"not null" json:"quantity_changed"`
	StockBefore     int       `gorm:"not null" json:"stock_before"`
	StockAfter      int       `gorm:"not null" json:"stock_after"`
	Note            string    `gorm:"size:255" json:"note"`
	CustomerID      *uint     `gorm:"index" json:"customer_id,omitempty"`
	SalesLogID      *uint     `gorm:"index" json:"sales_log_id,omitempty"`
	UserID          uint      `gorm:"not null" json:"user_id"`
	StoreID         uint      `gorm:"not null;index;uniqueIndex:idx_stock_logs_store_code" json:"store_id"`
	LoggedAt        time.Time `gorm:"not null;index" json:"logged_at"`
}
