package services

import (
	"testing"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Store{},
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.StockLog{},
		&models.SalesLog{},
	))

	return db
}

func seedStore(t *testing.T, db *gorm.DB) models.Store {
	t.Helper()

	store := models.Store{StoreCode: "ST001", StoreName: "Aling Nena's"}
	require.NoError(t, db.Create(&store).Error)
	return store
}

func seedUser(t *testing.T, db *gorm.DB, storeID uint) models.User {
	t.Helper()

	user := models.User{
		UserCode:     "USR001",
		Username:     "nena",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		FirstName:    "Nena",
		LastName:     "Reyes",
		Email:        "nena@example.com",
		StoreID:      storeID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, storeID uint, name string) models.Category {
	t.Helper()

	category := models.Category{
		CategoryCode: "C" + letterPrefix(name, 4) + "001",
		CategoryName: name,
		StoreID:      storeID,
	}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, storeID, categoryID uint, name string, stock int, price string) models.Product {
	t.Helper()

	product := models.Product{
		ProductCode:     "P" + letterPrefix(name, 2) + "001",
		ProductName:     name,
		CategoryID:      categoryID,
		UnitPrice:       decimal.RequireFromString(price),
		SalePrice:       decimal.RequireFromString(price),
		QuantityInStock: stock,
		ReorderLevel:    3,
		StoreID:         storeID,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedCustomer(t *testing.T, db *gorm.DB, storeID uint, name string) models.Customer {
	t.Helper()

	customer := models.Customer{
		CustomerCode: "CSM00" + string(rune('1'+customerSeq(t, db, storeID))),
		CustomerName: name,
		TotalUnpaid:  decimal.Zero,
		StoreID:      storeID,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func customerSeq(t *testing.T, db *gorm.DB, storeID uint) int {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Customer{}).Where("store_id = ?", storeID).Count(&n).Error)
	return int(n)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
