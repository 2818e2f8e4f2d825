package repositories

import (
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesLogFilter narrows a sales-ledger query. Zero values mean "no filter".
type SalesLogFilter struct {
	ProductID     uint
	CustomerID    uint
	PaymentStatus string
	From          time.Time
	To            time.Time
}

// SalesLogRepository handles database operations for the sales ledger.
type SalesLogRepository struct {
	db *gorm.DB
}

func NewSalesLogRepository(db *gorm.DB) *SalesLogRepository {
	return &SalesLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SalesLogRepository) WithTx(tx *gorm.DB) *SalesLogRepository {
	return &SalesLogRepository{db: tx}
}

func (r *SalesLogRepository) Create(log *models.SalesLog) error {
	return r.db.Create(log).Error
}

func (r *SalesLogRepository) Update(log *models.SalesLog) error {
	return r.db.Save(log).Error
}

// List returns one page of the sales ledger, newest first.
func (r *SalesLogRepository) List(storeID uint, filter SalesLogFilter, page, perPage int) ([]models.SalesLog, orm.Pagination, error) {
	q := r.db.Model(&models.SalesLog{}).Scopes(orm.ScopeStore(storeID))
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if !filter.From.IsZero() {
		q = q.Where("sale_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("sale_date < ?", filter.To)
	}

	var logs []models.SalesLog
	pagination, err := orm.Paginate(q.Order("sale_date DESC, id DESC"), page, perPage, &logs)
	return logs, pagination, err
}

// OpenForCustomer returns the customer's unsettled lines oldest first, the
// order settlement consumes them in.
func (r *SalesLogRepository) OpenForCustomer(storeID, customerID uint) ([]models.SalesLog, error) {
	var logs []models.SalesLog
	err := r.db.Scopes(orm.ScopeStore(storeID)).
		Where("customer_id = ? AND payment_status IN ?",
			customerID, []string{models.PaymentStatusBorrowed, models.PaymentStatusPartial}).
		Order("sale_date, id").
		Find(&logs).Error
	return logs, err
}

// OutstandingTotal sums the remaining balance across a customer's open
// lines. The customer's TotalUnpaid is always reset to this figure, never
// decremented, so drift cannot accumulate.
func (r *SalesLogRepository) OutstandingTotal(storeID, customerID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&models.SalesLog{}).
		Where("store_id = ? AND customer_id = ? AND payment_status IN ?",
			storeID, customerID, []string{models.PaymentStatusBorrowed, models.PaymentStatusPartial}).
		Select("SUM(remaining_amount)").
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

// PaidQuantity sums units of the product actually paid for (positive Paid
// lines). Returns may not exceed this minus what was already returned.
func (r *SalesLogRepository) PaidQuantity(storeID, productID uint) (int, error) {
	var n int64
	err := r.db.Model(&models.SalesLog{}).
		Where("store_id = ? AND product_id = ? AND payment_status = ? AND quantity_sold > 0",
			storeID, productID, models.PaymentStatusPaid).
		Select("COALESCE(SUM(quantity_sold), 0)").
		Scan(&n).Error
	return int(n), err
}

// ReturnedQuantity sums units already returned for the product. Return lines
// carry negative quantities, so the sum is negated.
func (r *SalesLogRepository) ReturnedQuantity(storeID, productID uint) (int, error) {
	var n int64
	err := r.db.Model(&models.SalesLog{}).
		Where("store_id = ? AND product_id = ? AND payment_status = ?",
			storeID, productID, models.PaymentStatusReturned).
		Select("COALESCE(-SUM(quantity_sold), 0)").
		Scan(&n).Error
	return int(n), err
}

// LastPaidUnitPrice returns the unit price of the most recent paid sale of
// the product, for refunds priced at what the buyer actually paid.
func (r *SalesLogRepository) LastPaidUnitPrice(storeID, productID uint) (decimal.Decimal, error) {
	var log models.SalesLog
	err := r.db.Scopes(orm.ScopeStore(storeID)).
		Where("product_id = ? AND payment_status = ? AND quantity_sold > 0",
			productID, models.PaymentStatusPaid).
		Order("sale_date DESC, id DESC").
		First(&log).Error
	if err != nil {
		return decimal.Zero, err
	}
	return log.UnitPrice, nil
}

// TotalsSince aggregates revenue and units for paid sales on or after the
// cutoff. The dashboard uses this for today's and the week's figures.
func (r *SalesLogRepository) TotalsSince(storeID uint, since time.Time) (decimal.Decimal, int, error) {
	return r.totals(r.paidSales(storeID).Where("sale_date >= ?", since))
}

// TotalsBetween aggregates paid revenue and units over [from, to).
func (r *SalesLogRepository) TotalsBetween(storeID uint, from, to time.Time) (decimal.Decimal, int, error) {
	return r.totals(r.paidSales(storeID).Where("sale_date >= ? AND sale_date < ?", from, to))
}

// DailyTotal is one calendar day's paid revenue and unit count.
type DailyTotal struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Units   int             `json:"units"`
}

// DailyTotals returns a per-day series of paid sales over [from, to),
// oldest day first. Days without sales are absent.
func (r *SalesLogRepository) DailyTotals(storeID uint, from, to time.Time) ([]DailyTotal, error) {
	var rows []struct {
		Day     string
		Revenue decimal.NullDecimal
		Units   int64
	}
	err := r.paidSales(storeID).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Select("DATE(sale_date) AS day, SUM(total_amount) AS revenue, COALESCE(SUM(quantity_sold), 0) AS units").
		Group("DATE(sale_date)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]DailyTotal, 0, len(rows))
	for _, row := range rows {
		d := DailyTotal{Day: row.Day, Revenue: decimal.Zero, Units: int(row.Units)}
		if row.Revenue.Valid {
			d.Revenue = row.Revenue.Decimal
		}
		out = append(out, d)
	}
	return out, nil
}

// ProductSales aggregates one product's paid sales for a period.
type ProductSales struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Units       int             `json:"units"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// TopProducts ranks products by units sold since the cutoff.
func (r *SalesLogRepository) TopProducts(storeID uint, since time.Time, limit int) ([]ProductSales, error) {
	var rows []struct {
		ProductID   uint
		ProductName string
		ProductCode string
		Units       int64
		Revenue     decimal.NullDecimal
	}
	err := r.paidSales(storeID).
		Where("sale_date >= ?", since).
		Select("product_id, product_name, product_code, COALESCE(SUM(quantity_sold), 0) AS units, SUM(total_amount) AS revenue").
		Group("product_id, product_name, product_code").
		Order("units DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]ProductSales, 0, len(rows))
	for _, row := range rows {
		p := ProductSales{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			ProductCode: row.ProductCode,
			Units:       int(row.Units),
			Revenue:     decimal.Zero,
		}
		if row.Revenue.Valid {
			p.Revenue = row.Revenue.Decimal
		}
		out = append(out, p)
	}
	return out, nil
}

// paidSales scopes a query to completed positive sales of one store.
func (r *SalesLogRepository) paidSales(storeID uint) *gorm.DB {
	return r.db.Model(&models.SalesLog{}).
		Where("store_id = ? AND payment_status = ? AND quantity_sold > 0",
			storeID, models.PaymentStatusPaid)
}

func (r *SalesLogRepository) totals(q *gorm.DB) (decimal.Decimal, int, error) {
	var row struct {
		Revenue decimal.NullDecimal
		Units   int64
	}
	err := q.Select("SUM(total_amount) AS revenue, COALESCE(SUM(quantity_sold), 0) AS units").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	revenue := decimal.Zero
	if row.Revenue.Valid {
		revenue = row.Revenue.Decimal
	}
	return revenue, int(row.Units), nil
}
