package migrations

import (
	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260301000000_create_stores_and_users", &CreateStoresAndUsers{})
	migration.Register("20260301000001_create_catalog_tables", &CreateCatalogTables{})
	migration.Register("20260301000002_create_customers_table", &CreateCustomersTable{})
	migration.Register("20260301000003_create_ledger_tables", &CreateLedgerTables{})
}

// -------- 0000: stores and users --------

type CreateStoresAndUsers struct{}

func (m *CreateStoresAndUsers) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Store{}, &models.User{})
}

func (m *CreateStoresAndUsers) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users", "stores")
}

// -------- 0001: categories and products --------

type CreateCatalogTables struct{}

func (m *CreateCatalogTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Category{}, &models.Product{})
}

func (m *CreateCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products", "categories")
}

// -------- 0002: customers --------

type CreateCustomersTable struct{}

func (m *CreateCustomersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Customer{})
}

func (m *CreateCustomersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("customers")
}

// -------- 0003: stock and sales ledgers --------

type CreateLedgerTables struct{}

func (m *CreateLedgerTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.StockLog{}, &models.SalesLog{})
}

func (m *CreateLedgerTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("sales_logs", "stock_logs")
}
