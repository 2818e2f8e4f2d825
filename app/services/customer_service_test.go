package services

import (
	"testing"

	"github.com/saristore/saristore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCreate(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	svc := NewCustomerService(db)
	customer, err := svc.Create(store.ID, "mang tomas", "0917 555 0101")
	require.NoError(t, err)

	assert.Equal(t, "CSM001", customer.CustomerCode)
	assert.Equal(t, "Mang Tomas", customer.CustomerName, "names are stored title-cased")
	assert.Equal(t, "0917 555 0101", customer.ContactInfo)

	second, err := svc.Create(store.ID, "Aling Nena", "")
	require.NoError(t, err)
	assert.Equal(t, "CSM002", second.CustomerCode)
}

func TestCustomerCreateRejectsWalkIn(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	for _, name := range []string{"Walk-in", "walk-in", " WALK-IN "} {
		_, err := NewCustomerService(db).Create(store.ID, name, "")
		assert.ErrorIs(t, err, ErrWalkInCredit, "name %q", name)
	}
}

func TestCustomerStatement(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Drinks")
	product := seedProduct(t, db, store.ID, cat.ID, "Soda", 20, "20.00")

	sales := NewSalesService(db, nil)
	result, err := sales.Checkout(store.ID, user.ID, CheckoutInput{
		Items:         []CartItem{{ProductID: product.ID, Quantity: 2}},
		PaymentStatus: models.PaymentStatusBorrowed,
		CustomerName:  "Aling Nena",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Customer)

	statement, err := NewCustomerService(db).Statement(store.ID, result.Customer.ID)
	require.NoError(t, err)

	assert.True(t, statement.Customer.TotalUnpaid.Equal(decimal.RequireFromString("40.00")))
	require.Len(t, statement.Open, 1)
	assert.Equal(t, models.PaymentStatusBorrowed, statement.Open[0].PaymentStatus)
	assert.True(t, statement.Open[0].RemainingAmount.Equal(decimal.RequireFromString("40.00")))
}

func TestCustomerStatementScopedToStore(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	customer := seedCustomer(t, db, store.ID, "Aling Nena")

	other := models.Store{StoreCode: "ST002", StoreName: "Other"}
	require.NoError(t, db.Create(&other).Error)

	_, err := NewCustomerService(db).Statement(other.ID, customer.ID)
	assert.Error(t, err, "customers are invisible outside their store")
}
