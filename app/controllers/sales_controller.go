package controllers

import (
	"net/http"

	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/bind"
	"github.com/saristore/saristore/pkg/response"
	"github.com/shopspring/decimal"
)

// SalesController fronts the transaction orchestrator. The request and
// response shapes here are fixed contracts with the POS clients, so these
// handlers bypass the standard envelope.
type SalesController struct {
	service *services.SalesService
}

func NewSalesController(service *services.SalesService) *SalesController {
	return &SalesController{service: service}
}

type checkoutCustomer struct {
	ID      uint   `json:"id"`
	Name    string `json:"name" validate:"nullable,max=255"`
	Contact string `json:"contact" validate:"nullable,max=100"`
}

// Checkout handles POST /api/checkout.
func (c *SalesController) Checkout(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		CartItems []struct {
			ID       uint `json:"id" validate:"required"`
			Quantity int  `json:"quantity" validate:"required,gte=1"`
		} `json:"cartItems"`
		PaymentMethod string            `json:"paymentMethod"`
		PaymentStatus string            `json:"paymentStatus" validate:"required,in=Paid,Borrowed"`
		Customer      *checkoutCustomer `json:"customer"`
		Note          string            `json:"note" validate:"nullable,max=255"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	in := services.CheckoutInput{
		PaymentStatus: body.PaymentStatus,
		PaymentMethod: body.PaymentMethod,
		Note:          body.Note,
	}
	for _, item := range body.CartItems {
		in.Items = append(in.Items, services.CartItem{ProductID: item.ID, Quantity: item.Quantity})
	}
	if body.Customer != nil {
		in.CustomerID = body.Customer.ID
		in.CustomerName = body.Customer.Name
		in.CustomerContact = body.Customer.Contact
	}

	result, err := c.service.Checkout(p.StoreID, p.UserID, in)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	payload := map[string]interface{}{
		"success":    true,
		"salesCodes": result.SalesCodes,
		"total":      result.Total,
	}
	if result.Customer != nil {
		payload["customer"] = result.Customer
	}
	response.JSON(w, http.StatusCreated, payload)
}

// Settle handles POST /api/customers/{id}/settle.
func (c *SalesController) Settle(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	customerID, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var body struct {
		AmountPaid    decimal.Decimal `json:"amountPaid"`
		PaymentMethod string          `json:"paymentMethod" validate:"required,in=cash,gcash"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.service.Settle(p.StoreID, p.UserID, customerID, body.AmountPaid, body.PaymentMethod)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"updatedUnpaid": result.UpdatedUnpaid,
		"linesSettled":  result.LinesSettled,
	})
}

// Return handles POST /api/returns.
func (c *SalesController) Return(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		ReturnItems []struct {
			ID       uint   `json:"id" validate:"required"`
			Quantity int    `json:"quantity" validate:"required,gte=1"`
			Note     string `json:"note" validate:"nullable,max=255"`
		} `json:"returnItems"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	items := make([]services.ReturnItem, 0, len(body.ReturnItems))
	for _, item := range body.ReturnItems {
		items = append(items, services.ReturnItem{ProductID: item.ID, Quantity: item.Quantity, Note: item.Note})
	}

	result, err := c.service.Return(p.StoreID, p.UserID, items)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Return processed",
		"details": map[string]interface{}{
			"refund":     result.Refund,
			"salesCodes": result.SalesCodes,
		},
	})
}

// Restock handles POST /api/products/{id}/restock.
func (c *SalesController) Restock(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	productID, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var body struct {
		QuantityToAdd int    `json:"quantityToAdd" validate:"required,gte=1"`
		Note          string `json:"note" validate:"nullable,max=255"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.service.Restock(p.StoreID, p.UserID, productID, body.QuantityToAdd, body.Note)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"newQuantity": result.NewQuantity,
		"logCode":     result.LogCode,
	})
}
