package services

import (
	"strings"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"gorm.io/gorm"
)

// CreditStatement is a customer plus their open ledger lines, what the
// store owner shows when the customer comes in to pay.
type CreditStatement struct {
	Customer models.Customer   `json:"customer"`
	Open     []models.SalesLog `json:"open_lines"`
}

// CustomerService manages credit-customer accounts.
type CustomerService struct {
	db        *gorm.DB
	customers *repositories.CustomerRepository
	salesLogs *repositories.SalesLogRepository
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{
		db:        db,
		customers: repositories.NewCustomerRepository(db),
		salesLogs: repositories.NewSalesLogRepository(db),
	}
}

func (s *CustomerService) List(storeID uint) ([]models.Customer, error) {
	return s.customers.ForStore(storeID)
}

// WithCredit lists only the customers who still owe something, the view the
// settlement screen starts from.
func (s *CustomerService) WithCredit(storeID uint) ([]models.Customer, error) {
	return s.customers.WithCredit(storeID)
}

func (s *CustomerService) Get(storeID, id uint) (models.Customer, error) {
	return s.customers.FindByID(storeID, id)
}

// Statement returns the customer together with their unsettled lines,
// oldest first.
func (s *CustomerService) Statement(storeID, id uint) (CreditStatement, error) {
	customer, err := s.customers.FindByID(storeID, id)
	if err != nil {
		return CreditStatement{}, err
	}

	open, err := s.salesLogs.OpenForCustomer(storeID, customer.ID)
	if err != nil {
		return CreditStatement{}, err
	}

	return CreditStatement{Customer: customer, Open: open}, nil
}

// Create registers a customer directly, outside of a checkout.
func (s *CustomerService) Create(storeID uint, name, contact string) (models.Customer, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, models.WalkInName) {
		return models.Customer{}, ErrWalkInCredit
	}
	name = titleCaser.String(name)

	var customer models.Customer
	err := s.db.Transaction(func(tx *gorm.DB) error {
		gen := NewCodeGenerator(tx)
		customers := s.customers.WithTx(tx)

		customer = models.Customer{
			CustomerName: name,
			ContactInfo:  strings.TrimSpace(contact),
			StoreID:      storeID,
		}
		_, err := gen.InsertWithRetry(SeqCustomer, storeID, func(code string) error {
			customer.CustomerCode = code
			customer.ID = 0
			return customers.Create(&customer)
		})
		return err
	})
	if err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

// UpdateContact edits the customer's contact details.
func (s *CustomerService) UpdateContact(storeID, id uint, contact string) (models.Customer, error) {
	customer, err := s.customers.FindByID(storeID, id)
	if err != nil {
		return models.Customer{}, err
	}

	customer.ContactInfo = strings.TrimSpace(contact)
	if err := s.customers.Update(&customer); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}
