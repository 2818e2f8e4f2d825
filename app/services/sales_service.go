package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"github.com/saristore/saristore/config"
	"github.com/saristore/saristore/pkg/collection"
	"github.com/saristore/saristore/pkg/logger"
	"github.com/saristore/saristore/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Sentinel errors for the transaction paths. Controllers map these to
// stable HTTP responses.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidPayment    = errors.New("invalid payment method or status")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrWalkInCredit      = errors.New("walk-in customers cannot borrow")
	ErrOverReturn        = errors.New("return exceeds quantity sold")
	ErrOverSettlement    = errors.New("payment exceeds outstanding balance")
	ErrNothingToSettle   = errors.New("customer has no outstanding balance")
)

var titleCaser = cases.Title(language.English)

// CartItem is one product line of a checkout.
type CartItem struct {
	ProductID uint
	Quantity  int
}

// CheckoutInput is a full cart. For borrowed sales either CustomerID (an
// existing account) or CustomerName (created on the fly) must be set.
type CheckoutInput struct {
	Items           []CartItem
	PaymentStatus   string // Paid | Borrowed
	PaymentMethod   string // cash | gcash; forced to "-" for Borrowed
	CustomerID      uint
	CustomerName    string
	CustomerContact string
	Note            string
}

// CheckoutResult reports what one checkout committed.
type CheckoutResult struct {
	SalesCodes []string
	Total      decimal.Decimal
	Customer   *models.Customer
	Products   []models.Product // post-checkout state, for low-stock checks
}

// ReturnItem is one product line of a return request.
type ReturnItem struct {
	ProductID uint
	Quantity  int
	Note      string
}

// ReturnResult reports a processed return.
type ReturnResult struct {
	SalesCodes []string
	Refund     decimal.Decimal
}

// RestockResult reports a completed restock.
type RestockResult struct {
	NewQuantity int
	LogCode     string
}

// SettleResult reports a settlement: which lines were touched and the
// customer's recomputed balance.
type SettleResult struct {
	UpdatedUnpaid decimal.Decimal
	LinesSettled  int
}

// SalesService is the transaction orchestrator. Every operation runs as a
// single database transaction: ledger lines, stock movements and balance
// updates all commit together or not at all.
type SalesService struct {
	db     *gorm.DB
	alerts *AlertService
}

func NewSalesService(db *gorm.DB, alerts *AlertService) *SalesService {
	return &SalesService{db: db, alerts: alerts}
}

// ─── Checkout ────────────────────────────────────────────────────────────────

// Checkout commits a sale. Paid carts settle immediately; Borrowed carts
// attach to a named customer and add to their credit. Stock is locked per
// product row, decremented, and every line is mirrored into both ledgers.
func (s *SalesService) Checkout(storeID, userID uint, in CheckoutInput) (CheckoutResult, error) {
	var result CheckoutResult

	if len(in.Items) == 0 {
		return result, ErrEmptyCart
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return result, ErrInvalidQuantity
		}
	}

	borrowed := in.PaymentStatus == models.PaymentStatusBorrowed
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	switch {
	case borrowed:
		method = models.PaymentMethodNone
	case in.PaymentStatus == models.PaymentStatusPaid:
		if method != models.PaymentMethodCash && method != models.PaymentMethodGCash {
			return result, fmt.Errorf("%w: method %q", ErrInvalidPayment, in.PaymentMethod)
		}
	default:
		return result, fmt.Errorf("%w: status %q", ErrInvalidPayment, in.PaymentStatus)
	}

	if borrowed && in.CustomerID == 0 && strings.TrimSpace(in.CustomerName) == "" {
		return result, ErrWalkInCredit
	}
	if borrowed && strings.EqualFold(strings.TrimSpace(in.CustomerName), models.WalkInName) {
		return result, ErrWalkInCredit
	}

	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		products := repositories.NewProductRepository(tx)
		customers := repositories.NewCustomerRepository(tx)
		salesLogs := repositories.NewSalesLogRepository(tx)

		var customer *models.Customer
		if borrowed || in.CustomerID != 0 || strings.TrimSpace(in.CustomerName) != "" {
			c, err := s.resolveCustomer(tx, gen, customers, storeID, in)
			if err != nil {
				return err
			}
			customer = c
		}

		total := decimal.Zero

		for _, item := range in.Items {
			product, err := products.FindByIDForUpdate(storeID, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if product.QuantityInStock < item.Quantity {
				return fmt.Errorf("%w: %s has %d left, wanted %d",
					ErrInsufficientStock, product.ProductName, product.QuantityInStock, item.Quantity)
			}

			lineTotal := product.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)

			stockBefore := product.QuantityInStock
			product.QuantityInStock -= item.Quantity
			if err := products.Update(&product); err != nil {
				return err
			}

			line := models.SalesLog{
				ProductID:     product.ID,
				ProductName:   product.ProductName,
				ProductCode:   product.ProductCode,
				QuantitySold:  item.Quantity,
				UnitPrice:     product.SalePrice,
				TotalAmount:   lineTotal,
				PaymentStatus: in.PaymentStatus,
				PaymentMethod: method,
				Note:          in.Note,
				UserID:        userID,
				StoreID:       storeID,
				SaleDate:      now,
			}
			if customer != nil {
				line.CustomerID = &customer.ID
				line.CustomerName = customer.CustomerName
			} else {
				line.CustomerName = models.WalkInName
			}
			if borrowed {
				line.RemainingAmount = lineTotal
			} else {
				line.RemainingAmount = decimal.Zero
			}

			salesCode, err := gen.InsertWithRetry(SeqSales, storeID, func(code string) error {
				line.LogCode = code
				line.ID = 0
				return salesLogs.Create(&line)
			})
			if err != nil {
				return err
			}

			changeType := models.StockChangeSold
			if borrowed {
				changeType = models.StockChangeBorrowed
			}
			stockLine := models.StockLog{
				ProductID:       product.ID,
				ProductName:     product.ProductName,
				ProductCode:     product.ProductCode,
				ChangeType:      changeType,
				QuantityChanged: -item.Quantity,
				StockBefore:     stockBefore,
				StockAfter:      product.QuantityInStock,
				SalesLogID:      &line.ID,
				UserID:          userID,
				StoreID:         storeID,
				LoggedAt:        now,
			}
			if customer != nil {
				stockLine.CustomerID = &customer.ID
			}
			if err := writeStockLog(tx, gen, storeID, &stockLine); err != nil {
				return err
			}

			result.SalesCodes = append(result.SalesCodes, salesCode)
			result.Products = append(result.Products, product)
		}

		if borrowed {
			outstanding, err := salesLogs.OutstandingTotal(storeID, customer.ID)
			if err != nil {
				return err
			}
			customer.TotalUnpaid = outstanding
			if err := customers.Update(customer); err != nil {
				return err
			}
		}

		result.Total = total
		result.Customer = customer
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	metrics.CheckoutsTotal.WithLabelValues(in.PaymentStatus).Inc()
	logger.Info("checkout complete",
		"store_id", storeID,
		"lines", len(result.SalesCodes),
		"total", result.Total.StringFixed(2),
		"status", in.PaymentStatus,
	)

	if s.alerts != nil {
		for _, p := range result.Products {
			s.alerts.CheckProduct(p)
		}
	}

	return result, nil
}

// resolveCustomer finds the cart's customer or creates one from the given
// name. Names are stored title-cased and matched case-insensitively, so
// "aling nena" and "Aling Nena" are one account.
func (s *SalesService) resolveCustomer(tx *gorm.DB, gen *CodeGenerator, customers *repositories.CustomerRepository, storeID uint, in CheckoutInput) (*models.Customer, error) {
	if in.CustomerID != 0 {
		c, err := customers.FindByID(storeID, in.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("customer %d: %w", in.CustomerID, err)
		}
		return &c, nil
	}

	name := titleCaser.String(strings.TrimSpace(in.CustomerName))
	if c, err := customers.FindByName(storeID, name); err == nil {
		return &c, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer := models.Customer{
		CustomerName: name,
		ContactInfo:  strings.TrimSpace(in.CustomerContact),
		TotalUnpaid:  decimal.Zero,
		StoreID:      storeID,
	}
	_, err := gen.InsertWithRetry(SeqCustomer, storeID, func(code string) error {
		customer.CustomerCode = code
		customer.ID = 0
		return customers.Create(&customer)
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ─── Settlement ──────────────────────────────────────────────────────────────

// Settle applies a payment to a customer's open lines oldest first. A line
// paid in full flips to Paid and its Borrowed stock entry becomes Sold; a
// partly covered line becomes Partial. The customer's balance is recomputed
// from the ledger afterwards.
func (s *SalesService) Settle(storeID, userID, customerID uint, amount decimal.Decimal, paymentMethod string) (SettleResult, error) {
	var result SettleResult

	method := strings.ToLower(strings.TrimSpace(paymentMethod))
	if method != models.PaymentMethodCash && method != models.PaymentMethodGCash {
		return result, fmt.Errorf("%w: method %q", ErrInvalidPayment, paymentMethod)
	}
	if !amount.IsPositive() {
		return result, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		customers := repositories.NewCustomerRepository(tx)
		salesLogs := repositories.NewSalesLogRepository(tx)
		stockLogs := repositories.NewStockLogRepository(tx)

		customer, err := customers.FindByIDForUpdate(storeID, customerID)
		if err != nil {
			return fmt.Errorf("customer %d: %w", customerID, err)
		}

		open, err := salesLogs.OpenForCustomer(storeID, customer.ID)
		if err != nil {
			return err
		}
		if len(open) == 0 {
			return ErrNothingToSettle
		}

		outstanding := collection.Reduce(open, decimal.Zero,
			func(acc decimal.Decimal, line models.SalesLog) decimal.Decimal {
				return acc.Add(line.RemainingAmount)
			})
		if amount.GreaterThan(outstanding) {
			return fmt.Errorf("%w: outstanding %s, offered %s",
				ErrOverSettlement, outstanding.StringFixed(2), amount.StringFixed(2))
		}

		left := amount
		var settledIDs []uint

		for i := range open {
			if !left.IsPositive() {
				break
			}
			line := &open[i]

			pay := decimal.Min(line.RemainingAmount, left)
			left = left.Sub(pay)
			line.RemainingAmount = line.RemainingAmount.Sub(pay)
			line.PaymentMethod = method

			if line.RemainingAmount.IsZero() {
				line.PaymentStatus = models.PaymentStatusPaid
				settledIDs = append(settledIDs, line.ID)
			} else {
				line.PaymentStatus = models.PaymentStatusPartial
			}

			if err := salesLogs.Update(line); err != nil {
				return err
			}
			result.LinesSettled++
		}

		// Borrowed stock entries of fully settled lines become Sold.
		if err := stockLogs.MarkBorrowedSold(storeID, settledIDs); err != nil {
			return err
		}

		updated, err := salesLogs.OutstandingTotal(storeID, customer.ID)
		if err != nil {
			return err
		}
		customer.TotalUnpaid = updated
		if err := customers.Update(&customer); err != nil {
			return err
		}

		result.UpdatedUnpaid = updated
		return nil
	})
	if err != nil {
		return SettleResult{}, err
	}

	metrics.SettlementsTotal.Inc()
	logger.Info("settlement complete",
		"store_id", storeID,
		"customer_id", customerID,
		"amount", amount.StringFixed(2),
		"remaining", result.UpdatedUnpaid.StringFixed(2),
	)
	return result, nil
}

// ─── Returns ─────────────────────────────────────────────────────────────────

// Return accepts product units back into stock and writes negative sales
// lines for the refund. A product can never be returned beyond what was
// actually paid for.
func (s *SalesService) Return(storeID, userID uint, items []ReturnItem) (ReturnResult, error) {
	var result ReturnResult

	if len(items) == 0 {
		return result, ErrEmptyCart
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return result, ErrInvalidQuantity
		}
	}

	now := time.Now()
	pricing := config.ReturnPricing()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		products := repositories.NewProductRepository(tx)
		salesLogs := repositories.NewSalesLogRepository(tx)

		refund := decimal.Zero

		for _, item := range items {
			product, err := products.FindByIDForUpdate(storeID, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}

			paid, err := salesLogs.PaidQuantity(storeID, product.ID)
			if err != nil {
				return err
			}
			returned, err := salesLogs.ReturnedQuantity(storeID, product.ID)
			if err != nil {
				return err
			}
			if item.Quantity > paid-returned {
				return fmt.Errorf("%w: %s has %d returnable unit(s)",
					ErrOverReturn, product.ProductName, paid-returned)
			}

			price := product.SalePrice
			if pricing == "last-sale" {
				if last, err := salesLogs.LastPaidUnitPrice(storeID, product.ID); err == nil {
					price = last
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
			}

			qty := decimal.NewFromInt(int64(item.Quantity))
			lineRefund := price.Mul(qty)
			refund = refund.Add(lineRefund)

			stockBefore := product.QuantityInStock
			product.QuantityInStock += item.Quantity
			if err := products.Update(&product); err != nil {
				return err
			}

			line := models.SalesLog{
				ProductID:       product.ID,
				ProductName:     product.ProductName,
				ProductCode:     product.ProductCode,
				CustomerName:    models.WalkInName,
				QuantitySold:    -item.Quantity,
				UnitPrice:       price,
				TotalAmount:     lineRefund.Neg(),
				RemainingAmount: decimal.Zero,
				PaymentStatus:   models.PaymentStatusReturned,
				PaymentMethod:   models.PaymentMethodNone,
				Note:            item.Note,
				UserID:          userID,
				StoreID:         storeID,
				SaleDate:        now,
			}
			salesCode, err := gen.InsertWithRetry(SeqSales, storeID, func(code string) error {
				line.LogCode = code
				line.ID = 0
				return salesLogs.Create(&line)
			})
			if err != nil {
				return err
			}

			stockLine := models.StockLog{
				ProductID:       product.ID,
				ProductName:     product.ProductName,
				ProductCode:     product.ProductCode,
				ChangeType:      models.StockChangeReturned,
				QuantityChanged: item.Quantity,
				StockBefore:     stockBefore,
				StockAfter:      product.QuantityInStock,
				Note:            item.Note,
				SalesLogID:      &line.ID,
				UserID:          userID,
				StoreID:         storeID,
				LoggedAt:        now,
			}
			if err := writeStockLog(tx, gen, storeID, &stockLine); err != nil {
				return err
			}

			result.SalesCodes = append(result.SalesCodes, salesCode)
		}

		result.Refund = refund
		return nil
	})
	if err != nil {
		return ReturnResult{}, err
	}

	metrics.ReturnsTotal.Inc()
	logger.Info("return complete",
		"store_id", storeID,
		"lines", len(result.SalesCodes),
		"refund", result.Refund.StringFixed(2),
	)
	return result, nil
}

// ─── Restock ─────────────────────────────────────────────────────────────────

// Restock adds units to a product and records the movement.
func (s *SalesService) Restock(storeID, userID, productID uint, quantity int, note string) (RestockResult, error) {
	var result RestockResult

	if quantity <= 0 {
		return result, ErrInvalidQuantity
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		products := repositories.NewProductRepository(tx)

		product, err := products.FindByIDForUpdate(storeID, productID)
		if err != nil {
			return fmt.Errorf("product %d: %w", productID, err)
		}

		stockBefore := product.QuantityInStock
		product.QuantityInStock += quantity
		if err := products.Update(&product); err != nil {
			return err
		}

		stockLine := models.StockLog{
			ProductID:       product.ID,
			ProductName:     product.ProductName,
			ProductCode:     product.ProductCode,
			ChangeType:      models.StockChangeRestocked,
			QuantityChanged: quantity,
			StockBefore:     stockBefore,
			StockAfter:      product.QuantityInStock,
			Note:            note,
			UserID:          userID,
			StoreID:         storeID,
			LoggedAt:        time.Now(),
		}
		if err := writeStockLog(tx, gen, storeID, &stockLine); err != nil {
			return err
		}

		result.NewQuantity = product.QuantityInStock
		result.LogCode = stockLine.LogCode
		return nil
	})
	if err != nil {
		return RestockResult{}, err
	}

	logger.Info("restock complete", "store_id", storeID, "product_id", productID, "added", quantity)
	return result, nil
}

// writeStockLog allocates a ledger code for the entry's change type and
// inserts it, retrying on lost code races.
func writeStockLog(tx *gorm.DB, gen *CodeGenerator, storeID uint, entry *models.StockLog) error {
	stockLogs := repositories.NewStockLogRepository(tx)
	_, err := gen.InsertWithRetry(SeqStock(entry.ChangeType), storeID, func(code string) error {
		entry.LogCode = code
		entry.ID = 0
		return stockLogs.Create(entry)
	})
	return err
}
