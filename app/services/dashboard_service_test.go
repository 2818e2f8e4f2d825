package services

import (
	"testing"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	chips := seedProduct(t, db, store.ID, cat.ID, "Chips", 10, "15.00")
	soda := seedProduct(t, db, store.ID, cat.ID, "Soda", 20, "20.00")

	sales := NewSalesService(db, nil)

	// Today: 3 chips and 1 soda paid, 2 sodas on credit.
	_, err := sales.Checkout(store.ID, user.ID, CheckoutInput{
		Items: []CartItem{
			{ProductID: chips.ID, Quantity: 3},
			{ProductID: soda.ID, Quantity: 1},
		},
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	_, err = sales.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: soda.ID, Quantity: 2}},
		PaymentStatus: models.PaymentStatusBorrowed,
		CustomerName:  "Aling Nena",
	})
	require.NoError(t, err)

	// A paid sale ten days back, landing in the "last week" window.
	old := models.SalesLog{
		LogCode:       "SLS900",
		ProductID:     chips.ID,
		ProductName:   chips.ProductName,
		ProductCode:   chips.ProductCode,
		CustomerName:  models.WalkInName,
		QuantitySold:  2,
		UnitPrice:     decimal.RequireFromString("15.00"),
		TotalAmount:   decimal.RequireFromString("30.00"),
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: models.PaymentMethodCash,
		SaleDate:      time.Now().AddDate(0, 0, -10),
		StoreID:       store.ID,
		UserID:        user.ID,
	}
	require.NoError(t, db.Create(&old).Error)

	summary, err := NewDashboardService(db).Summary(store.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.ProductCount)
	assert.Equal(t, int64(1), summary.CategoryCount)

	// Borrowed sales never count as revenue.
	assert.True(t, summary.TodayRevenue.Equal(decimal.RequireFromString("65.00")),
		"today revenue is %s", summary.TodayRevenue)
	assert.Equal(t, 4, summary.TodayUnits)
	assert.True(t, summary.WeekRevenue.Equal(summary.TodayRevenue))
	assert.True(t, summary.LastWeekRevenue.Equal(decimal.RequireFromString("30.00")),
		"last week revenue is %s", summary.LastWeekRevenue)

	require.NotEmpty(t, summary.DailySales)
	today := summary.DailySales[len(summary.DailySales)-1]
	assert.Equal(t, 4, today.Units)
	assert.True(t, today.Revenue.Equal(summary.TodayRevenue))

	require.NotEmpty(t, summary.TopProducts)
	assert.Equal(t, chips.ID, summary.TopProducts[0].ProductID)

	assert.True(t, summary.OutstandingCredit.Equal(decimal.RequireFromString("40.00")),
		"outstanding credit is %s", summary.OutstandingCredit)
	require.Len(t, summary.TopDebtors, 1)
	assert.Equal(t, "Aling Nena", summary.TopDebtors[0].CustomerName)

	require.Len(t, summary.RecentSales, 4)
	assert.NotEqual(t, "SLS900", summary.RecentSales[0].LogCode, "newest lines come first")
}

func TestDashboardSummaryEmptyStore(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	summary, err := NewDashboardService(db).Summary(store.ID)
	require.NoError(t, err)

	assert.Zero(t, summary.ProductCount)
	assert.True(t, summary.TodayRevenue.IsZero())
	assert.True(t, summary.OutstandingCredit.IsZero())
	assert.Empty(t, summary.DailySales)
	assert.Empty(t, summary.TopProducts)
	assert.Empty(t, summary.TopDebtors)
}
