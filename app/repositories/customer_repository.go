package repositories

import (
	"strings"

	"github.com/saristore/saristore/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerRepository handles database operations for Customer.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

func (r *CustomerRepository) ForStore(storeID uint) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Where("store_id = ?", storeID).Order("customer_name").Find(&customers).Error
	return customers, err
}

// WithCredit returns only customers carrying an unpaid balance.
func (r *CustomerRepository) WithCredit(storeID uint) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Where("store_id = ? AND total_unpaid > 0", storeID).
		Order("total_unpaid DESC").
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) FindByID(storeID, id uint) (models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("store_id = ?", storeID).First(&customer, id).Error
	return customer, err
}

// FindByIDForUpdate locks the customer row for the enclosing transaction so
// concurrent settlements serialise instead of double-paying lines.
func (r *CustomerRepository) FindByIDForUpdate(storeID, id uint) (models.Customer, error) {
	var customer models.Customer
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ?", storeID).
		First(&customer, id).Error
	return customer, err
}

// FindByName matches case-insensitively; checkout reuses an existing
// customer record rather than creating a duplicate under different casing.
func (r *CustomerRepository) FindByName(storeID uint, name string) (models.Customer, error) {
	var customer models.Customer
	err := r.db.
		Where("store_id = ? AND LOWER(customer_name) = ?", storeID, strings.ToLower(strings.TrimSpace(name))).
		First(&customer).Error
	return customer, err
}

func (r *CustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *CustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}
