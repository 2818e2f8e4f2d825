package services

import (
	"fmt"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/cache"
	"github.com/saristore/saristore/pkg/logger"
	"github.com/saristore/saristore/pkg/metrics"
	"github.com/saristore/saristore/pkg/workerpool"
	"github.com/saristore/saristore/pkg/ws"
	"gorm.io/gorm"
)

// alertDedupTTL suppresses repeat alerts for the same product. A product
// hovering at its reorder level alerts once, not on every sale.
const alertDedupTTL = 6 * time.Hour

// LowStockAlert is the payload pushed to dashboards over the websocket.
type LowStockAlert struct {
	Type            string    `json:"type"`
	StoreID         uint      `json:"store_id"`
	ProductID       uint      `json:"product_id"`
	ProductCode     string    `json:"product_code"`
	ProductName     string    `json:"product_name"`
	QuantityInStock int       `json:"quantity_in_stock"`
	ReorderLevel    int       `json:"reorder_level"`
	At              time.Time `json:"at"`
}

// AlertService watches stock levels after checkouts and pushes low-stock
// alerts to connected dashboards. Dispatch is handed to a bounded pool so a
// slow consumer can never stall a checkout response.
type AlertService struct {
	hub  *ws.Hub
	pool *workerpool.Pool
}

func NewAlertService(hub *ws.Hub, pool *workerpool.Pool) *AlertService {
	return &AlertService{hub: hub, pool: pool}
}

// CheckProduct emits a low-stock alert when the product is at or below its
// reorder level, deduplicated per store and product.
func (s *AlertService) CheckProduct(p models.Product) {
	if p.QuantityInStock > p.ReorderLevel {
		return
	}

	key := fmt.Sprintf("lowstock:%d:%d", p.StoreID, p.ID)
	if !cache.Once(key, alertDedupTTL) {
		return
	}

	alert := LowStockAlert{
		Type:            "low_stock",
		StoreID:         p.StoreID,
		ProductID:       p.ID,
		ProductCode:     p.ProductCode,
		ProductName:     p.ProductName,
		QuantityInStock: p.QuantityInStock,
		ReorderLevel:    p.ReorderLevel,
		At:              time.Now(),
	}

	dispatch := func() {
		metrics.LowStockAlerts.Inc()
		if s.hub != nil {
			s.hub.BroadcastJSON(alert)
		}
		logger.Warn("low stock",
			"store_id", p.StoreID,
			"product", p.ProductName,
			"stock", p.QuantityInStock,
			"reorder_level", p.ReorderLevel,
		)
	}

	if s.pool != nil {
		if err := s.pool.Submit(dispatch); err == nil {
			return
		}
		// Pool saturated or shut down; fall through and dispatch inline.
	}
	dispatch()
}

// Sweep re-checks every product sitting at or below its reorder level,
// across all stores. The nightly schedule calls this so alerts whose dedup
// window has lapsed resurface even when nothing sells.
func (s *AlertService) Sweep(db *gorm.DB) error {
	var low []models.Product
	if err := db.Where("quantity_in_stock <= reorder_level").Find(&low).Error; err != nil {
		return err
	}
	for _, p := range low {
		s.CheckProduct(p)
	}
	return nil
}
