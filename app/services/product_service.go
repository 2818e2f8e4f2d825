package services

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"github.com/saristore/saristore/pkg/logger"
	"github.com/saristore/saristore/pkg/orm"
	"github.com/saristore/saristore/pkg/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrCategoryNotFound is returned when a product references a category
	// that does not exist in the store.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrUnsupportedImage is returned for uploads that are not jpg, png or
	// webp.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	ProductName     string
	CategoryID      uint
	UnitPrice       decimal.Decimal
	SalePrice       decimal.Decimal
	QuantityInStock int
	ReorderLevel    int
}

// ProductService manages the catalogue. Every stock-affecting change it
// makes is mirrored into the stock ledger: creation logs New, quantity edits
// log Corrected, deletion logs Removed.
type ProductService struct {
	db       *gorm.DB
	products *repositories.ProductRepository
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db, products: repositories.NewProductRepository(db)}
}

func (s *ProductService) Search(storeID uint, name string, categoryID uint, page, perPage int) ([]models.Product, orm.Pagination, error) {
	return s.products.Search(storeID, name, categoryID, page, perPage)
}

func (s *ProductService) Get(storeID, id uint) (models.Product, error) {
	return s.products.FindByID(storeID, id)
}

func (s *ProductService) LowStock(storeID uint) ([]models.Product, error) {
	return s.products.LowStock(storeID)
}

// Create adds a product to the catalogue. The code is derived from the
// category name (PSN001 for the first Snacks product) and the opening
// quantity is logged as a New movement.
func (s *ProductService) Create(storeID, userID uint, in ProductInput) (models.Product, error) {
	if in.QuantityInStock < 0 || in.ReorderLevel < 0 {
		return models.Product{}, ErrInvalidQuantity
	}

	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		products := s.products.WithTx(tx)
		categories := repositories.NewCategoryRepository(tx)

		category, err := categories.FindByID(storeID, in.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		product = models.Product{
			ProductName:     strings.TrimSpace(in.ProductName),
			CategoryID:      category.ID,
			UnitPrice:       in.UnitPrice,
			SalePrice:       in.SalePrice,
			QuantityInStock: in.QuantityInStock,
			ReorderLevel:    in.ReorderLevel,
			StoreID:         storeID,
		}
		_, err = gen.InsertWithRetry(SeqProduct(category.CategoryName), storeID, func(code string) error {
			product.ProductCode = code
			product.ID = 0
			return products.Create(&product)
		})
		if err != nil {
			return err
		}

		entry := models.StockLog{
			ProductID:       product.ID,
			ProductName:     product.ProductName,
			ProductCode:     product.ProductCode,
			ChangeType:      models.StockChangeNew,
			QuantityChanged: product.QuantityInStock,
			StockBefore:     0,
			StockAfter:      product.QuantityInStock,
			UserID:          userID,
			StoreID:         storeID,
			LoggedAt:        time.Now(),
		}
		return writeStockLog(tx, gen, storeID, &entry)
	})
	if err != nil {
		return models.Product{}, err
	}

	logger.Info("product created", "store_id", storeID, "code", product.ProductCode, "name", product.ProductName)
	return product, nil
}

// Update edits a product. A quantity change is treated as a manual stock
// correction and logged with its delta; prices, name and reorder level
// change silently.
func (s *ProductService) Update(storeID, userID, id uint, in ProductInput, note string) (models.Product, error) {
	if in.QuantityInStock < 0 || in.ReorderLevel < 0 {
		return models.Product{}, ErrInvalidQuantity
	}

	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		products := s.products.WithTx(tx)

		var err error
		product, err = products.FindByIDForUpdate(storeID, id)
		if err != nil {
			return err
		}

		stockBefore := product.QuantityInStock

		product.ProductName = strings.TrimSpace(in.ProductName)
		if in.CategoryID != 0 && in.CategoryID != product.CategoryID {
			categories := repositories.NewCategoryRepository(tx)
			if _, err := categories.FindByID(storeID, in.CategoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCategoryNotFound
				}
				return err
			}
			product.CategoryID = in.CategoryID
		}
		product.UnitPrice = in.UnitPrice
		product.SalePrice = in.SalePrice
		product.ReorderLevel = in.ReorderLevel
		product.QuantityInStock = in.QuantityInStock

		if err := products.Update(&product); err != nil {
			return err
		}

		if in.QuantityInStock == stockBefore {
			return nil
		}

		entry := models.StockLog{
			ProductID:       product.ID,
			ProductName:     product.ProductName,
			ProductCode:     product.ProductCode,
			ChangeType:      models.StockChangeCorrected,
			QuantityChanged: in.QuantityInStock - stockBefore,
			StockBefore:     stockBefore,
			StockAfter:      in.QuantityInStock,
			Note:            note,
			UserID:          userID,
			StoreID:         storeID,
			LoggedAt:        time.Now(),
		}
		return writeStockLog(tx, gen, storeID, &entry)
	})
	if err != nil {
		return models.Product{}, err
	}

	return product, nil
}

// Delete removes a product from the catalogue. The row is hard-deleted so
// its code returns to the pool; history survives in the ledger snapshots.
func (s *ProductService) Delete(storeID, userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		products := s.products.WithTx(tx)

		product, err := products.FindByIDForUpdate(storeID, id)
		if err != nil {
			return err
		}

		entry := models.StockLog{
			ProductID:       product.ID,
			ProductName:     product.ProductName,
			ProductCode:     product.ProductCode,
			ChangeType:      models.StockChangeRemoved,
			QuantityChanged: -product.QuantityInStock,
			StockBefore:     product.QuantityInStock,
			StockAfter:      0,
			UserID:          userID,
			StoreID:         storeID,
			LoggedAt:        time.Now(),
		}
		if err := writeStockLog(tx, gen, storeID, &entry); err != nil {
			return err
		}

		if err := tx.Unscoped().Delete(&product).Error; err != nil {
			return err
		}

		logger.Info("product removed", "store_id", storeID, "code", product.ProductCode)
		return nil
	})
}

// AttachImage stores the uploaded image under the product's code and saves
// the path on the record.
func (s *ProductService) AttachImage(storeID, id uint, filename string, data []byte) (models.Product, error) {
	product, err := s.products.FindByID(storeID, id)
	if err != nil {
		return models.Product{}, err
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return models.Product{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}

	imagePath := fmt.Sprintf("products/%d/%s%s", storeID, product.ProductCode, ext)
	if err := storage.Put(imagePath, data); err != nil {
		return models.Product{}, err
	}

	product.ProductImage = imagePath
	if err := s.products.Update(&product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}
