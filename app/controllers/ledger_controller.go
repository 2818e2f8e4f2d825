package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/saristore/saristore/app/repositories"
	"github.com/saristore/saristore/pkg/orm"
	"github.com/saristore/saristore/pkg/response"
)

// LedgerController serves the read side of both ledgers: filtered,
// paginated history for the audit screens.
type LedgerController struct {
	stockLogs *repositories.StockLogRepository
	salesLogs *repositories.SalesLogRepository
}

func NewLedgerController(stockLogs *repositories.StockLogRepository, salesLogs *repositories.SalesLogRepository) *LedgerController {
	return &LedgerController{stockLogs: stockLogs, salesLogs: salesLogs}
}

// queryDate parses an ISO date (2006-01-02) query parameter.
func queryDate(r *http.Request, name string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get(name), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StockLogs handles GET /api/stock-logs with ?product_id=, ?change_type=,
// ?from=, ?to= (dates) and pagination.
func (c *LedgerController) StockLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	productID, _ := strconv.ParseUint(r.URL.Query().Get("product_id"), 10, 32)
	filter := repositories.StockLogFilter{
		ProductID:  uint(productID),
		ChangeType: r.URL.Query().Get("change_type"),
		From:       queryDate(r, "from"),
	}
	if to := queryDate(r, "to"); !to.IsZero() {
		filter.To = to.AddDate(0, 0, 1) // inclusive end date
	}

	page, perPage := orm.PageFromRequest(r)
	logs, pagination, err := c.stockLogs.List(p.StoreID, filter, page, perPage)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Paginated(w, logs, pagination)
}

// SalesLogs handles GET /api/sales-logs with ?product_id=, ?customer_id=,
// ?payment_status=, ?from=, ?to= and pagination.
func (c *LedgerController) SalesLogs(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	productID, _ := strconv.ParseUint(r.URL.Query().Get("product_id"), 10, 32)
	customerID, _ := strconv.ParseUint(r.URL.Query().Get("customer_id"), 10, 32)
	filter := repositories.SalesLogFilter{
		ProductID:     uint(productID),
		CustomerID:    uint(customerID),
		PaymentStatus: r.URL.Query().Get("payment_status"),
		From:          queryDate(r, "from"),
	}
	if to := queryDate(r, "to"); !to.IsZero() {
		filter.To = to.AddDate(0, 0, 1)
	}

	page, perPage := orm.PageFromRequest(r)
	logs, pagination, err := c.salesLogs.List(p.StoreID, filter, page, perPage)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Paginated(w, logs, pagination)
}
