package controllers

import (
	"net/http"

	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/bind"
	"github.com/saristore/saristore/pkg/response"
)

type CategoryController struct {
	service *services.CategoryService
}

func NewCategoryController(service *services.CategoryService) *CategoryController {
	return &CategoryController{service: service}
}

// Index handles GET /api/categories.
func (c *CategoryController) Index(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	categories, err := c.service.List(p.StoreID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, categories)
}

// Store handles POST /api/categories.
func (c *CategoryController) Store(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body struct {
		CategoryName string `json:"category_name" validate:"required,min=2,max=100"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.service.Create(p.StoreID, body.CategoryName)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, category)
}

// Update handles PUT /api/categories/{id}.
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var body struct {
		CategoryName string `json:"category_name" validate:"required,min=2,max=100"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.service.Rename(p.StoreID, id, body.CategoryName)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, category)
}

// Destroy handles DELETE /api/categories/{id}.
func (c *CategoryController) Destroy(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := c.service.Delete(p.StoreID, id); err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"deleted": true})
}
