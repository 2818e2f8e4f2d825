package repositories

import (
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/orm"
	"gorm.io/gorm"
)

// StockLogFilter narrows a stock-ledger query. Zero values mean "no filter".
type StockLogFilter struct {
	ProductID  uint
	ChangeType string
	From       time.Time
	To         time.Time
}

// StockLogRepository handles database operations for the stock ledger.
type StockLogRepository struct {
	db *gorm.DB
}

func NewStockLogRepository(db *gorm.DB) *StockLogRepository {
	return &StockLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StockLogRepository) WithTx(tx *gorm.DB) *StockLogRepository {
	return &StockLogRepository{db: tx}
}

func (r *StockLogRepository) Create(log *models.StockLog) error {
	return r.db.Create(log).Error
}

// List returns one page of the stock ledger, newest first.
func (r *StockLogRepository) List(storeID uint, filter StockLogFilter, page, perPage int) ([]models.StockLog, orm.Pagination, error) {
	q := r.db.Model(&models.StockLog{}).Scopes(orm.ScopeStore(storeID))
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.ChangeType != "" {
		q = q.Where("change_type = ?", filter.ChangeType)
	}
	if !filter.From.IsZero() {
		q = q.Where("logged_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("logged_at < ?", filter.To)
	}

	var logs []models.StockLog
	pagination, err := orm.Paginate(q.Order("logged_at DESC, id DESC"), page, perPage, &logs)
	return logs, pagination, err
}

// ForProduct returns the full movement history of one product, oldest first.
func (r *StockLogRepository) ForProduct(storeID, productID uint) ([]models.StockLog, error) {
	var logs []models.StockLog
	err := r.db.Scopes(orm.ScopeStore(storeID)).
		Where("product_id = ?", productID).
		Order("logged_at, id").
		Find(&logs).Error
	return logs, err
}

// MarkBorrowedSold flips the Borrowed lines backing the given sales lines to
// Sold. This is the single permitted mutation of an existing ledger row and
// happens only inside the settlement transaction.
func (r *StockLogRepository) MarkBorrowedSold(storeID uint, salesLogIDs []uint) error {
	if len(salesLogIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.StockLog{}).
		Where("store_id = ? AND change_type = ? AND sales_log_id IN ?",
			storeID, models.StockChangeBorrowed, salesLogIDs).
		Update("change_type", models.StockChangeSold).Error
}
