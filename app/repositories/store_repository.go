package repositories

import (
	"github.com/saristore/saristore/app/models"
	"gorm.io/gorm"
)

// StoreRepository handles database operations for Store.
type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) FindByID(id uint) (models.Store, error) {
	var store models.Store
	err := r.db.First(&store, id).Error
	return store, err
}

func (r *StoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

func (r *StoreRepository) Update(store *models.Store) error {
	return r.db.Save(store).Error
}
