package repositories

import (
	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Search returns one page of a store's catalogue, optionally filtered by
// name substring and category.
func (r *ProductRepository) Search(storeID uint, name string, categoryID uint, page, perPage int) ([]models.Product, orm.Pagination, error) {
	q := r.db.Model(&models.Product{}).Scopes(orm.ScopeStore(storeID))
	if name != "" {
		q = q.Where("product_name LIKE ?", "%"+name+"%")
	}
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	pagination, err := orm.Paginate(q.Order("product_name"), page, perPage, &products)
	return products, pagination, err
}

func (r *ProductRepository) FindByID(storeID, id uint) (models.Product, error) {
	var product models.Product
	err := r.db.Where("store_id = ?", storeID).First(&product, id).Error
	return product, err
}

// FindByIDForUpdate locks the product row for the duration of the enclosing
// transaction. Stock mutations must go through this so concurrent checkouts
// serialise on the row instead of losing updates.
func (r *ProductRepository) FindByIDForUpdate(storeID, id uint) (models.Product, error) {
	var product models.Product
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ?", storeID).
		First(&product, id).Error
	return product, err
}

func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *ProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *ProductRepository) Delete(product *models.Product) error {
	return r.db.Delete(product).Error
}

// LowStock returns products at or below their reorder level.
func (r *ProductRepository) LowStock(storeID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Scopes(orm.ScopeStore(storeID)).
		Where("quantity_in_stock <= reorder_level").
		Order("quantity_in_stock").
		Find(&products).Error
	return products, err
}

// CountForStore reports catalogue size, used by the dashboard.
func (r *ProductRepository) CountForStore(storeID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&n).Error
	return n, err
}
