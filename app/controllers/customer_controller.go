package controllers

import (
	"net/http"

	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/bind"
	"github.com/saristore/saristore/pkg/response"
)

type CustomerController struct {
	service *services.CustomerService
}

func NewCustomerController(service *services.CustomerService) *CustomerController {
	return &CustomerController{service: service}
}

// Index handles GET /api/customers. With ?with_credit=1 only debtors are
// returned.
func (c *CustomerController) Index(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var err error
	var customers interface{}
	if r.URL.Query().Get("with_credit") != "" {
		customers, err = c.service.WithCredit(p.StoreID)
	} else {
		customers, err = c.service.List(p.StoreID)
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, customers)
}

// Show handles GET /api/customers/{id}.
func (c *CustomerController) Show(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := c.service.Get(p.StoreID, id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, customer)
}

// Statement handles GET /api/customers/{id}/statement, the settlement
// screen's view of a debtor.
func (c *CustomerController) Statement(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	statement, err := c.service.Statement(p.StoreID, id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, statement)
}

// Store handles POST /api/customers.
func (c *CustomerController) Store(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		CustomerName string `json:"customer_name" validate:"required,min=2,max=255"`
		ContactInfo  string `json:"contact_info" validate:"nullable,max=100"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	customer, err := c.service.Create(p.StoreID, body.CustomerName, body.ContactInfo)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, customer)
}

// Update handles PUT /api/customers/{id}.
func (c *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var body struct {
		ContactInfo string `json:"contact_info" validate:"nullable,max=100"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	customer, err := c.service.UpdateContact(p.StoreID, id, body.ContactInfo)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, customer)
}
