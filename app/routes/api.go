// Package routes wires controllers onto the router. Route names follow the
// "resource.action" convention and feed the route:list command.
package routes

import (
	"net/http"
	"time"

	"github.com/saristore/saristore/app/controllers"
	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/app/repositories"
	"github.com/saristore/saristore/app/services"
	"github.com/saristore/saristore/pkg/metrics"
	"github.com/saristore/saristore/pkg/middleware"
	"github.com/saristore/saristore/pkg/rbac"
	"github.com/saristore/saristore/pkg/router"
	"github.com/saristore/saristore/pkg/storage"
	"github.com/saristore/saristore/pkg/workerpool"
	"github.com/saristore/saristore/pkg/ws"
	"gorm.io/gorm"
)

// AlertHub pushes low-stock alerts to connected dashboards.
var AlertHub = ws.NewHub()

// alertPool runs alert dispatch off the checkout path.
var alertPool = workerpool.New(4)

// Alerts watches stock levels and feeds AlertHub. The server also hands it
// to the nightly sweep.
var Alerts = services.NewAlertService(AlertHub, alertPool)

// RegisterAPI builds the service graph on top of db and mounts every route.
func RegisterAPI(r *router.Router, db *gorm.DB) {
	alerts := Alerts

	authController := controllers.NewAuthController(services.NewAuthService(db))
	salesController := controllers.NewSalesController(services.NewSalesService(db, alerts))
	productController := controllers.NewProductController(services.NewProductService(db))
	categoryController := controllers.NewCategoryController(services.NewCategoryService(db))
	customerController := controllers.NewCustomerController(services.NewCustomerService(db))
	ledgerController := controllers.NewLedgerController(
		repositories.NewStockLogRepository(db),
		repositories.NewSalesLogRepository(db),
	)
	dashboardController := controllers.NewDashboardController(services.NewDashboardService(db))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/storage/*", "storage.show", storage.FileServer("/storage/"))
	r.Get("/ws/alerts", "ws.alerts", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, AlertHub)
	}, middleware.AuthMiddleware)

	api := r.Group("/api")

	// Throttle the credential endpoints; everything else sits behind auth.
	loginThrottle := middleware.RateLimit(10, time.Minute)
	api.Post("/register", "auth.register", authController.Register, rbac.Guest, loginThrottle)
	api.Post("/login", "auth.login", authController.Login, rbac.Guest, loginThrottle)

	protected := api.Group("", middleware.AuthMiddleware)

	protected.Get("/me", "auth.me", authController.Me)
	protected.Get("/profile", "auth.profile", authController.Profile)
	protected.Put("/profile", "auth.profile.update", authController.UpdateProfile)
	protected.Put("/password", "auth.password.update", authController.ChangePassword)

	adminOnly := rbac.HasRole(models.RoleAdmin)
	protected.Get("/users", "users.index", authController.Staff, adminOnly)
	protected.Post("/users", "users.store", authController.AddStaff, adminOnly)

	protected.Post("/checkout", "sales.checkout", salesController.Checkout)
	protected.Post("/returns", "sales.return", salesController.Return)

	protected.Get("/customers", "customers.index", customerController.Index)
	protected.Post("/customers", "customers.store", customerController.Store)
	protected.Get("/customers/{id}", "customers.show", customerController.Show)
	protected.Put("/customers/{id}", "customers.update", customerController.Update)
	protected.Get("/customers/{id}/statement", "customers.statement", customerController.Statement)
	protected.Post("/customers/{id}/settle", "customers.settle", salesController.Settle)

	protected.Get("/products", "products.index", productController.Index)
	protected.Post("/products", "products.store", productController.Store)
	protected.Get("/products/low-stock", "products.low_stock", productController.LowStock)
	protected.Get("/products/{id}", "products.show", productController.Show)
	protected.Put("/products/{id}", "products.update", productController.Update)
	protected.Delete("/products/{id}", "products.destroy", productController.Destroy, adminOnly)
	protected.Post("/products/{id}/restock", "products.restock", salesController.Restock)
	protected.Post("/products/{id}/image", "products.image", productController.UploadImage)

	protected.Get("/categories", "categories.index", categoryController.Index)
	protected.Post("/categories", "categories.store", categoryController.Store, adminOnly)
	protected.Put("/categories/{id}", "categories.update", categoryController.Update, adminOnly)
	protected.Delete("/categories/{id}", "categories.destroy", categoryController.Destroy, adminOnly)

	protected.Get("/stock-logs", "ledger.stock", ledgerController.StockLogs)
	protected.Get("/sales-logs", "ledger.sales", ledgerController.SalesLogs)

	protected.Get("/dashboard", "dashboard.summary", dashboardController.Summary)
}
