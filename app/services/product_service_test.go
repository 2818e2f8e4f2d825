package services

import (
	"testing"

	"github.com/saristore/saristore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productInput(categoryID uint, name string, qty int) ProductInput {
	return ProductInput{
		ProductName:     name,
		CategoryID:      categoryID,
		UnitPrice:       decimal.RequireFromString("10.00"),
		SalePrice:       decimal.RequireFromString("12.00"),
		QuantityInStock: qty,
		ReorderLevel:    3,
	}
}

func TestProductCreateLogsNew(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")

	svc := NewProductService(db)
	product, err := svc.Create(store.ID, user.ID, productInput(cat.ID, "Banana Chips", 12))
	require.NoError(t, err)
	assert.Equal(t, "PSN001", product.ProductCode, "code derives from the category name")

	var entry models.StockLog
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&entry).Error)
	assert.Equal(t, models.StockChangeNew, entry.ChangeType)
	assert.Equal(t, "LNEW001", entry.LogCode)
	assert.Equal(t, 12, entry.QuantityChanged)
	assert.Equal(t, 0, entry.StockBefore)
	assert.Equal(t, 12, entry.StockAfter)
}

func TestProductCreateUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	svc := NewProductService(db)
	_, err := svc.Create(store.ID, user.ID, productInput(99, "Banana Chips", 12))
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductUpdateUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")
	product := seedProduct(t, db, store.ID, cat.ID, "Banana Chips", 12, "10.00")

	svc := NewProductService(db)
	_, err := svc.Update(store.ID, user.ID, product.ID, productInput(cat.ID+99, "Banana Chips", 12), "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	var kept models.Product
	require.NoError(t, db.First(&kept, product.ID).Error)
	assert.Equal(t, cat.ID, kept.CategoryID, "the dangling id is never persisted")
}

func TestProductUpdateLogsCorrectionOnQuantityChange(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")

	svc := NewProductService(db)
	product, err := svc.Create(store.ID, user.ID, productInput(cat.ID, "Banana Chips", 12))
	require.NoError(t, err)

	in := productInput(cat.ID, "Banana Chips", 8)
	_, err = svc.Update(store.ID, user.ID, product.ID, in, "shelf recount")
	require.NoError(t, err)

	var entry models.StockLog
	require.NoError(t, db.Where("product_id = ? AND change_type = ?",
		product.ID, models.StockChangeCorrected).First(&entry).Error)
	assert.Equal(t, -4, entry.QuantityChanged)
	assert.Equal(t, 12, entry.StockBefore)
	assert.Equal(t, 8, entry.StockAfter)
	assert.Equal(t, "shelf recount", entry.Note)

	// A price-only edit must not add ledger noise.
	in.QuantityInStock = 8
	in.SalePrice = decimal.RequireFromString("13.00")
	_, err = svc.Update(store.ID, user.ID, product.ID, in, "")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.StockLog{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count, "only New and Corrected entries exist")
}

func TestProductDeleteLogsRemovedAndFreesCode(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)
	cat := seedCategory(t, db, store.ID, "Snacks")

	svc := NewProductService(db)
	product, err := svc.Create(store.ID, user.ID, productInput(cat.ID, "Banana Chips", 5))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(store.ID, user.ID, product.ID))

	var entry models.StockLog
	require.NoError(t, db.Where("product_id = ? AND change_type = ?",
		product.ID, models.StockChangeRemoved).First(&entry).Error)
	assert.Equal(t, -5, entry.QuantityChanged)
	assert.Equal(t, 0, entry.StockAfter)
	assert.Equal(t, "Banana Chips", entry.ProductName, "snapshot survives the delete")

	// The code is freed for the next product in the category.
	again, err := svc.Create(store.ID, user.ID, productInput(cat.ID, "Cassava Chips", 3))
	require.NoError(t, err)
	assert.Equal(t, "PSN001", again.ProductCode)
}
