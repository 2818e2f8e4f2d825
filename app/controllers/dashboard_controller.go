package controllers

import (
	"net/http"

	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/response"
)

type DashboardController struct {
	service *services.DashboardService
}

func NewDashboardController(service *services.DashboardService) *DashboardController {
	return &DashboardController{service: service}
}

// Summary handles GET /api/dashboard.
func (c *DashboardController) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	summary, err := c.service.Summary(p.StoreID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, summary)
}
