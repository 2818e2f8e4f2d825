package seeders

import (
	"fmt"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("demo-store", SeedDemoStore)
}

type demoProduct struct {
	name    string
	unit    string
	sale    string
	stock   int
	reorder int
}

// SeedDemoStore creates one store with an admin, a cashier, a small
// catalogue and a couple of credit customers. It goes through the service
// layer so every row gets its code and ledger entry the normal way.
// Running it twice is a no-op.
func SeedDemoStore(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Store{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	authSvc := services.NewAuthService(db)
	result, err := authSvc.Register(services.RegisterInput{
		StoreName:    "Aling Rosa's Store",
		StoreAddress: "123 Mabini St, Quezon City",
		Username:     "rosa",
		Password:     "password123",
		FirstName:    "Rosa",
		LastName:     "Santos",
		Email:        "rosa@example.com",
	})
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	storeID := result.User.StoreID
	adminID := result.User.ID

	if _, err := authSvc.AddStaff(storeID, services.StaffInput{
		Username:  "marco",
		Password:  "password123",
		Role:      models.RoleCashier,
		FirstName: "Marco",
		LastName:  "Reyes",
		Email:     "marco@example.com",
	}); err != nil {
		return fmt.Errorf("seed cashier: %w", err)
	}

	categorySvc := services.NewCategoryService(db)
	productSvc := services.NewProductService(db)

	catalogue := map[string][]demoProduct{
		"Snacks": {
			{"Piattos Cheese 40g", "18.00", "22.00", 48, 10},
			{"SkyFlakes Crackers", "7.50", "9.00", 100, 20},
		},
		"Beverages": {
			{"Coke Mismo 295ml", "14.00", "18.00", 60, 12},
			{"Kopiko Black 3-in-1", "8.00", "10.00", 150, 30},
		},
		"Household": {
			{"Surf Powder 65g", "7.00", "9.00", 80, 15},
		},
	}

	for name, items := range catalogue {
		category, err := categorySvc.Create(storeID, name)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
		for _, item := range items {
			if _, err := productSvc.Create(storeID, adminID, services.ProductInput{
				ProductName:     item.name,
				CategoryID:      category.ID,
				UnitPrice:       decimal.RequireFromString(item.unit),
				SalePrice:       decimal.RequireFromString(item.sale),
				QuantityInStock: item.stock,
				ReorderLevel:    item.reorder,
			}); err != nil {
				return fmt.Errorf("seed product %s: %w", item.name, err)
			}
		}
	}

	customerSvc := services.NewCustomerService(db)
	for _, c := range []struct{ name, contact string }{
		{"Aling Nena", "0917 555 0101"},
		{"Mang Tomas", "0918 555 0202"},
	} {
		if _, err := customerSvc.Create(storeID, c.name, c.contact); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.name, err)
		}
	}

	return nil
}
