package services

import (
	"errors"
	"strings"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"gorm.io/gorm"
)

var (
	// ErrCategoryExists is returned when a store already has a category
	// with the same name, in any casing.
	ErrCategoryExists = errors.New("category already exists")
	// ErrCategoryInUse is returned when deleting a category that still has
	// products.
	ErrCategoryInUse = errors.New("category still has products")
)

// CategoryService manages a store's product categories.
type CategoryService struct {
	db         *gorm.DB
	categories *repositories.CategoryRepository
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db, categories: repositories.NewCategoryRepository(db)}
}

func (s *CategoryService) List(storeID uint) ([]models.Category, error) {
	return s.categories.ForStore(storeID)
}

func (s *CategoryService) Get(storeID, id uint) (models.Category, error) {
	return s.categories.FindByID(storeID, id)
}

// Create adds a category, deriving its code from the name (CSNAC001 for
// Snacks).
func (s *CategoryService) Create(storeID uint, name string) (models.Category, error) {
	name = titleCaser.String(strings.TrimSpace(name))

	var category models.Category

	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		categories := s.categories.WithTx(tx)

		if _, err := categories.FindByName(storeID, name); err == nil {
			return ErrCategoryExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		category = models.Category{CategoryName: name, StoreID: storeID}
		_, err := gen.InsertWithRetry(SeqCategory(name), storeID, func(code string) error {
			category.CategoryCode = code
			category.ID = 0
			return categories.Create(&category)
		})
		return err
	})
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// Rename changes a category's display name. The code keeps its original
// abbreviation; product codes already derived from it stay valid.
func (s *CategoryService) Rename(storeID, id uint, name string) (models.Category, error) {
	name = titleCaser.String(strings.TrimSpace(name))

	category, err := s.categories.FindByID(storeID, id)
	if err != nil {
		return models.Category{}, err
	}

	if existing, err := s.categories.FindByName(storeID, name); err == nil && existing.ID != id {
		return models.Category{}, ErrCategoryExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, err
	}

	category.CategoryName = name
	if err := s.categories.Update(&category); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// Delete removes an empty category; its code returns to the pool.
func (s *CategoryService) Delete(storeID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		category, err := categories.FindByID(storeID, id)
		if err != nil {
			return err
		}

		n, err := categories.ProductCount(category.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrCategoryInUse
		}

		return tx.Unscoped().Delete(&category).Error
	})
}
