package services

import (
	"fmt"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"github.com/saristore/saristore/pkg/cache"
	"github.com/saristore/saristore/pkg/collection"
	"github.com/saristore/saristore/pkg/logger"
	"github.com/saristore/saristore/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// summaryTTL bounds how stale a cached dashboard may get. Checkouts do not
// invalidate it; thirty seconds of lag is fine for an at-a-glance view.
const summaryTTL = 30 * time.Second

// DashboardSummary is the owner's at-a-glance view of one store.
type DashboardSummary struct {
	ProductCount      int64                       `json:"product_count"`
	CategoryCount     int64                       `json:"category_count"`
	LowStockProducts  []models.Product            `json:"low_stock_products"`
	TodayRevenue      decimal.Decimal             `json:"today_revenue"`
	TodayUnits        int                         `json:"today_units"`
	WeekRevenue       decimal.Decimal             `json:"week_revenue"`
	LastWeekRevenue   decimal.Decimal             `json:"last_week_revenue"`
	MonthRevenue      decimal.Decimal             `json:"month_revenue"`
	DailySales        []repositories.DailyTotal   `json:"daily_sales"`
	TopProducts       []repositories.ProductSales `json:"top_products"`
	OutstandingCredit decimal.Decimal             `json:"outstanding_credit"`
	TopDebtors        []models.Customer           `json:"top_debtors"`
	RecentSales       []models.SalesLog           `json:"recent_sales"`
}

// DashboardService aggregates ledger and catalogue figures for the
// dashboard endpoint.
type DashboardService struct {
	db         *gorm.DB
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	customers  *repositories.CustomerRepository
	salesLogs  *repositories.SalesLogRepository
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		db:         db,
		products:   repositories.NewProductRepository(db),
		categories: repositories.NewCategoryRepository(db),
		customers:  repositories.NewCustomerRepository(db),
		salesLogs:  repositories.NewSalesLogRepository(db),
	}
}

// Summary builds the dashboard for one store. "This week" is the rolling
// seven days ending today; "last week" the seven before that.
func (s *DashboardService) Summary(storeID uint) (DashboardSummary, error) {
	var summary DashboardSummary
	var err error

	key := fmt.Sprintf("dashboard:summary:%d", storeID)
	if cache.Get(key, &summary) {
		metrics.CacheHits.WithLabelValues("redis").Inc()
		return summary, nil
	}
	metrics.CacheMisses.WithLabelValues("redis").Inc()

	if summary.ProductCount, err = s.products.CountForStore(storeID); err != nil {
		return summary, err
	}
	if summary.CategoryCount, err = s.categories.CountForStore(storeID); err != nil {
		return summary, err
	}
	if summary.LowStockProducts, err = s.products.LowStock(storeID); err != nil {
		return summary, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if summary.TodayRevenue, summary.TodayUnits, err = s.salesLogs.TotalsSince(storeID, today); err != nil {
		return summary, err
	}
	if summary.WeekRevenue, _, err = s.salesLogs.TotalsSince(storeID, weekStart); err != nil {
		return summary, err
	}
	if summary.LastWeekRevenue, _, err = s.salesLogs.TotalsBetween(storeID, weekStart.AddDate(0, 0, -7), weekStart); err != nil {
		return summary, err
	}
	if summary.MonthRevenue, _, err = s.salesLogs.TotalsSince(storeID, monthStart); err != nil {
		return summary, err
	}
	if summary.DailySales, err = s.salesLogs.DailyTotals(storeID, weekStart, tomorrow); err != nil {
		return summary, err
	}
	if summary.TopProducts, err = s.salesLogs.TopProducts(storeID, monthStart, 5); err != nil {
		return summary, err
	}

	debtors, err := s.customers.WithCredit(storeID)
	if err != nil {
		return summary, err
	}
	summary.OutstandingCredit = collection.Reduce(debtors, decimal.Zero,
		func(acc decimal.Decimal, c models.Customer) decimal.Decimal {
			return acc.Add(c.TotalUnpaid)
		})
	summary.TopDebtors = collection.Take(debtors, 5)

	recent, _, err := s.salesLogs.List(storeID, repositories.SalesLogFilter{}, 1, 10)
	if err != nil {
		return summary, err
	}
	summary.RecentSales = recent

	if err := cache.Set(key, summary, summaryTTL); err != nil {
		logger.Warn("dashboard cache write failed", "error", err)
	}

	return summary, nil
}
