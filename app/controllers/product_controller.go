package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/bind"
	"github.com/saristore/saristore/pkg/orm"
	"github.com/saristore/saristore/pkg/response"
	"github.com/shopspring/decimal"
)

// maxImageBytes caps product image uploads at 5 MB.
const maxImageBytes = 5 << 20

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

type productBody struct {
	ProductName     string          `json:"product_name" validate:"required,min=1,max=255"`
	CategoryID      uint            `json:"category_id" validate:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	QuantityInStock int             `json:"quantity_in_stock" validate:"gte=0"`
	ReorderLevel    int             `json:"reorder_level" validate:"gte=0"`
	Note            string          `json:"note" validate:"nullable,max=255"`
}

func (b productBody) input() services.ProductInput {
	return services.ProductInput{
		ProductName:     b.ProductName,
		CategoryID:      b.CategoryID,
		UnitPrice:       b.UnitPrice,
		SalePrice:       b.SalePrice,
		QuantityInStock: b.QuantityInStock,
		ReorderLevel:    b.ReorderLevel,
	}
}

// Index handles GET /api/products with ?name=, ?category_id=, ?page=.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	page, perPage := orm.PageFromRequest(r)
	categoryID, _ := strconv.ParseUint(r.URL.Query().Get("category_id"), 10, 32)

	products, pagination, err := c.service.Search(p.StoreID, r.URL.Query().Get("name"), uint(categoryID), page, perPage)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Paginated(w, products, pagination)
}

// LowStock handles GET /api/products/low-stock.
func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	products, err := c.service.LowStock(p.StoreID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, products)
}

// Show handles GET /api/products/{id}.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := c.service.Get(p.StoreID, id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, product)
}

// Store handles POST /api/products.
func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var body productBody
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Create(p.StoreID, p.UserID, body.input())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, product)
}

// Update handles PUT /api/products/{id}.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var body productBody
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Update(p.StoreID, p.UserID, id, body.input(), body.Note)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, product)
}

// Destroy handles DELETE /api/products/{id}.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := c.service.Delete(p.StoreID, p.UserID, id); err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"deleted": true})
}

// UploadImage handles POST /api/products/{id}/image with a multipart form
// carrying a single "image" file.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := uintParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "unreadable image file")
		return
	}

	product, err := c.service.AttachImage(p.StoreID, id, header.Filename, data)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, product)
}
