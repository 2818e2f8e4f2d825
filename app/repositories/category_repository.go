package repositories

import (
	"strings"

	"github.com/saristore/saristore/app/models"
	"gorm.io/gorm"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

func (r *CategoryRepository) ForStore(storeID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("store_id = ?", storeID).Order("category_name").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) FindByID(storeID, id uint) (models.Category, error) {
	var category models.Category
	err := r.db.Where("store_id = ?", storeID).First(&category, id).Error
	return category, err
}

// FindByName matches case-insensitively so "Snacks" and "snacks" are the
// same category.
func (r *CategoryRepository) FindByName(storeID uint, name string) (models.Category, error) {
	var category models.Category
	err := r.db.
		Where("store_id = ? AND LOWER(category_name) = ?", storeID, strings.ToLower(strings.TrimSpace(name))).
		First(&category).Error
	return category, err
}

func (r *CategoryRepository) CountForStore(storeID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Category{}).Where("store_id = ?", storeID).Count(&n).Error
	return n, err
}

func (r *CategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *CategoryRepository) Delete(category *models.Category) error {
	return r.db.Delete(category).Error
}

// ProductCount reports how many products still reference the category.
// A category with products cannot be deleted.
func (r *CategoryRepository) ProductCount(categoryID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}
