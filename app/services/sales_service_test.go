package services

import (
	"testing"

	"github.com/saristore/saristore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutPaidCash(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	product := seedProduct(t, db, store.ID, cat.ID, "Chips", 10, "15.50")

	svc := NewSalesService(db, nil)
	result, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 3}},
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"SLS001"}, result.SalesCodes)
	assert.True(t, result.Total.Equal(decimal.RequireFromString("46.50")), "total is %s", result.Total)
	assert.Nil(t, result.Customer)

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, 7, got.QuantityInStock)

	var line models.SalesLog
	require.NoError(t, db.Where("log_code = ?", "SLS001").First(&line).Error)
	assert.Equal(t, models.PaymentStatusPaid, line.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCash, line.PaymentMethod)
	assert.Equal(t, models.WalkInName, line.CustomerName)
	assert.True(t, line.RemainingAmount.IsZero())

	var stockLine models.StockLog
	require.NoError(t, db.Where("sales_log_id = ?", line.ID).First(&stockLine).Error)
	assert.Equal(t, models.StockChangeSold, stockLine.ChangeType)
	assert.Equal(t, "LSLD001", stockLine.LogCode)
	assert.Equal(t, -3, stockLine.QuantityChanged)
	assert.Equal(t, 10, stockLine.StockBefore)
	assert.Equal(t, 7, stockLine.StockAfter)
}

func TestCheckoutBorrowedCreatesCustomer(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Drinks")
	product := seedProduct(t, db, store.ID, cat.ID, "Soda", 10, "20.00")

	svc := NewSalesService(db, nil)
	result, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentStatus: models.PaymentStatusBorrowed,
		CustomerName:  "aling nena",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Customer)
	assert.Equal(t, "Aling Nena", result.Customer.CustomerName, "names are stored title-cased")
	assert.Equal(t, "CSM001", result.Customer.CustomerCode)
	assert.True(t, result.Customer.TotalUnpaid.Equal(decimal.RequireFromString("40.00")))

	var line models.SalesLog
	require.NoError(t, db.Where("store_id = ?", store.ID).First(&line).Error)
	assert.Equal(t, models.PaymentStatusBorrowed, line.PaymentStatus)
	assert.Equal(t, models.PaymentMethodNone, line.PaymentMethod)
	assert.True(t, line.RemainingAmount.Equal(decimal.RequireFromString("40.00")))

	var stockLine models.StockLog
	require.NoError(t, db.Where("sales_log_id = ?", line.ID).First(&stockLine).Error)
	assert.Equal(t, models.StockChangeBorrowed, stockLine.ChangeType)
	assert.Equal(t, "LBRW001", stockLine.LogCode)
	require.NotNil(t, stockLine.CustomerID)
	assert.Equal(t, result.Customer.ID, *stockLine.CustomerID)
}

func TestCheckoutBorrowedReusesExistingCustomer(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Drinks")
	product := seedProduct(t, db, store.ID, cat.ID, "Soda", 10, "20.00")
	existing := seedCustomer(t, db, store.ID, "Aling Nena")

	svc := NewSalesService(db, nil)
	result, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentStatus: models.PaymentStatusBorrowed,
		CustomerName:  "ALING NENA",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.Customer.ID, "case-insensitive match reuses the account")

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Where("store_id = ?", store.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckoutWalkInCannotBorrow(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Drinks")
	product := seedProduct(t, db, store.ID, cat.ID, "Soda", 10, "20.00")

	svc := NewSalesService(db, nil)

	_, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentStatus: models.PaymentStatusBorrowed,
	})
	assert.ErrorIs(t, err, ErrWalkInCredit, "anonymous borrow is rejected")

	_, err = svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentStatus: models.PaymentStatusBorrowed,
		CustomerName:  "walk-IN",
	})
	assert.ErrorIs(t, err, ErrWalkInCredit, "the reserved name is rejected in any casing")
}

func TestCheckoutInvalidPayment(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Drinks")
	product := seedProduct(t, db, store.ID, cat.ID, "Soda", 10, "20.00")

	svc := NewSalesService(db, nil)

	_, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "cheque",
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentStatus: "Pending",
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestCheckoutAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	plenty := seedProduct(t, db, store.ID, cat.ID, "Chips", 10, "15.00")
	scarce := models.Product{
		ProductCode:     "PCR001",
		ProductName:     "Crackers",
		CategoryID:      cat.ID,
		UnitPrice:       decimal.RequireFromString("8.00"),
		SalePrice:       decimal.RequireFromString("8.00"),
		QuantityInStock: 1,
		ReorderLevel:    1,
		StoreID:         store.ID,
	}
	require.NoError(t, db.Create(&scarce).Error)

	svc := NewSalesService(db, nil)
	_, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items: []CartItem{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "gcash",
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The failing second line must roll back the first one too.
	var got models.Product
	require.NoError(t, db.First(&got, plenty.ID).Error)
	assert.Equal(t, 10, got.QuantityInStock)

	var salesCount, stockCount int64
	require.NoError(t, db.Model(&models.SalesLog{}).Where("store_id = ?", store.ID).Count(&salesCount).Error)
	require.NoError(t, db.Model(&models.StockLog{}).Where("store_id = ?", store.ID).Count(&stockCount).Error)
	assert.Zero(t, salesCount)
	assert.Zero(t, stockCount)
}

func TestSettleFIFO(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Grocery")

	// Three borrowed sales: 100, 50, 30.
	prices := []string{"100.00", "50.00", "30.00"}
	names := []string{"Rice", "Oil", "Sugar"}
	svc := NewSalesService(db, nil)

	var customerID uint
	for i := range prices {
		product := seedProduct(t, db, store.ID, cat.ID, names[i], 10, prices[i])
		result, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
			Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
			PaymentStatus: models.PaymentStatusBorrowed,
			CustomerName:  "Mang Ben",
		})
		require.NoError(t, err)
		customerID = result.Customer.ID
	}

	result, err := svc.Settle(store.ID, user.ID, customerID, decimal.RequireFromString("120.00"), "cash")
	require.NoError(t, err)

	assert.True(t, result.UpdatedUnpaid.Equal(decimal.RequireFromString("60.00")),
		"remaining balance is %s", result.UpdatedUnpaid)
	assert.Equal(t, 2, result.LinesSettled)

	var lines []models.SalesLog
	require.NoError(t, db.Where("store_id = ?", store.ID).Order("id").Find(&lines).Error)
	require.Len(t, lines, 3)

	// Oldest line (100) fully paid.
	assert.Equal(t, models.PaymentStatusPaid, lines[0].PaymentStatus)
	assert.Equal(t, models.PaymentMethodCash, lines[0].PaymentMethod)
	assert.True(t, lines[0].RemainingAmount.IsZero())

	// Second line (50) partially covered by the remaining 20.
	assert.Equal(t, models.PaymentStatusPartial, lines[1].PaymentStatus)
	assert.True(t, lines[1].RemainingAmount.Equal(decimal.RequireFromString("30.00")))

	// Third line untouched.
	assert.Equal(t, models.PaymentStatusBorrowed, lines[2].PaymentStatus)
	assert.Equal(t, models.PaymentMethodNone, lines[2].PaymentMethod)

	// The settled line's Borrowed stock entry flipped to Sold; the others stayed.
	var flipped models.StockLog
	require.NoError(t, db.Where("sales_log_id = ?", lines[0].ID).First(&flipped).Error)
	assert.Equal(t, models.StockChangeSold, flipped.ChangeType)

	var stillBorrowed models.StockLog
	require.NoError(t, db.Where("sales_log_id = ?", lines[1].ID).First(&stillBorrowed).Error)
	assert.Equal(t, models.StockChangeBorrowed, stillBorrowed.ChangeType)

	var customer models.Customer
	require.NoError(t, db.First(&customer, customerID).Error)
	assert.True(t, customer.TotalUnpaid.Equal(decimal.RequireFromString("60.00")))
}

func TestSettleRejectsOverpayment(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Grocery")
	product := seedProduct(t, db, store.ID, cat.ID, "Rice", 10, "100.00")

	svc := NewSalesService(db, nil)
	result, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 1}},
		PaymentStatus: models.PaymentStatusBorrowed,
		CustomerName:  "Mang Ben",
	})
	require.NoError(t, err)

	_, err = svc.Settle(store.ID, user.ID, result.Customer.ID, decimal.RequireFromString("150.00"), "cash")
	assert.ErrorIs(t, err, ErrOverSettlement)

	var customer models.Customer
	require.NoError(t, db.First(&customer, result.Customer.ID).Error)
	assert.True(t, customer.TotalUnpaid.Equal(decimal.RequireFromString("100.00")),
		"failed settlement leaves the balance untouched")
}

func TestSettleValidation(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	customer := seedCustomer(t, db, store.ID, "Mang Ben")

	svc := NewSalesService(db, nil)

	_, err := svc.Settle(store.ID, user.ID, customer.ID, decimal.RequireFromString("10.00"), "barter")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Settle(store.ID, user.ID, customer.ID, decimal.Zero, "cash")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Settle(store.ID, user.ID, customer.ID, decimal.RequireFromString("10.00"), "cash")
	assert.ErrorIs(t, err, ErrNothingToSettle)
}

func TestReturnWithinPaidQuantity(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	product := seedProduct(t, db, store.ID, cat.ID, "Chips", 10, "15.00")

	svc := NewSalesService(db, nil)
	_, err := svc.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 4}},
		PaymentStatus: models.PaymentStatusPaid,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	result, err := svc.Return(store.ID, user.ID, []ReturnItem{{ProductID: product.ID, Quantity: 3, Note: "damaged"}})
	require.NoError(t, err)
	assert.True(t, result.Refund.Equal(decimal.RequireFromString("45.00")))

	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.Equal(t, 9, got.QuantityInStock, "6 after the sale, back to 9 after the return")

	var line models.SalesLog
	require.NoError(t, db.Where("payment_status = ?", models.PaymentStatusReturned).First(&line).Error)
	assert.Equal(t, -3, line.QuantitySold)
	assert.True(t, line.TotalAmount.Equal(decimal.RequireFromString("-45.00")))

	var stockLine models.StockLog
	require.NoError(t, db.Where("change_type = ?", models.StockChangeReturned).First(&stockLine).Error)
	assert.Equal(t, "LRTN001", stockLine.LogCode)
	assert.Equal(t, 3, stockLine.QuantityChanged)

	// Only one unit is still returnable.
	_, err = svc.Return(store.ID, user.ID, []ReturnItem{{ProductID: product.ID, Quantity: 2}})
	assert.ErrorIs(t, err, ErrOverReturn)

	_, err = svc.Return(store.ID, user.ID, []ReturnItem{{ProductID: product.ID, Quantity: 1}})
	assert.NoError(t, err)
}

func TestReturnNeverSoldProduct(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	product := seedProduct(t, db, store.ID, cat.ID, "Chips", 10, "15.00")

	svc := NewSalesService(db, nil)
	_, err := svc.Return(store.ID, user.ID, []ReturnItem{{ProductID: product.ID, Quantity: 1}})
	assert.ErrorIs(t, err, ErrOverReturn)
}

func TestRestock(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	product := seedProduct(t, db, store.ID, cat.ID, "Chips", 2, "15.00")

	svc := NewSalesService(db, nil)
	result, err := svc.Restock(store.ID, user.ID, product.ID, 24, "weekly delivery")
	require.NoError(t, err)
	assert.Equal(t, 26, result.NewQuantity)
	assert.Equal(t, "LRST001", result.LogCode)

	var stockLine models.StockLog
	require.NoError(t, db.Where("log_code = ?", "LRST001").First(&stockLine).Error)
	assert.Equal(t, models.StockChangeRestocked, stockLine.ChangeType)
	assert.Equal(t, 24, stockLine.QuantityChanged)
	assert.Equal(t, 2, stockLine.StockBefore)
	assert.Equal(t, 26, stockLine.StockAfter)

	_, err = svc.Restock(store.ID, user.ID, product.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
