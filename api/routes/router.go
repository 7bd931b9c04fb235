package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/martsys/inventory-backend/api/controllers"
	"github.com/martsys/inventory-backend/api/middleware"
	analyticssvc "github.com/martsys/inventory-backend/internal/analytics"
	catalogsvc "github.com/martsys/inventory-backend/internal/catalog"
	categorysvc "github.com/martsys/inventory-backend/internal/categories"
	ledgersvc "github.com/martsys/inventory-backend/internal/ledger"
	"github.com/martsys/inventory-backend/internal/reconcile"
	settingssvc "github.com/martsys/inventory-backend/internal/settings"
	"github.com/martsys/inventory-backend/pkg/config"
	"github.com/martsys/inventory-backend/pkg/db"
	"github.com/martsys/inventory-backend/pkg/logger"
	pkgredis "github.com/martsys/inventory-backend/pkg/redis"
)

// Deps bundles everything the router needs. Redis and the metrics gatherer
// are optional; the matching surfaces degrade gracefully when absent.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DBPinger   db.Pinger
	Redis      *pkgredis.Client
	Gatherer   prometheus.Gatherer
	Categories categorysvc.Service
	Catalog    catalogsvc.Service
	Ledger     ledgersvc.Service
	Engine     reconcile.Engine
	Analytics  analyticssvc.Service
	Settings   settingssvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger(deps.Redis)))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Categories, logg))
			r.Post("/", controllers.CreateCategory(deps.Categories, logg))
			r.Delete("/{name}", controllers.DeleteCategory(deps.Categories, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, logg))
			r.Post("/", controllers.CreateProduct(deps.Catalog, logg))
			r.Get("/export.csv", controllers.ExportProductsCSV(deps.Catalog, logg))
			r.Get("/lookup", controllers.LookupProduct(deps.Catalog, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(deps.Catalog, logg))
				r.Patch("/", controllers.UpdateProduct(deps.Catalog, logg))
				r.Delete("/", controllers.DeleteProduct(deps.Catalog, logg))
				r.Get("/snapshot", controllers.ProductSnapshot(deps.Catalog, logg))
				r.Post("/rebuild", controllers.RebuildProduct(deps.Engine, logg))
			})
		})

		r.Post("/stock/events", controllers.RecordStockEvent(deps.Engine, logg))
		r.Post("/checkout", controllers.Checkout(deps.Engine, logg))
		r.Get("/transactions", controllers.ListTransactions(deps.Ledger, logg))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/best-sellers", controllers.BestSellers(deps.Analytics, logg))
			r.Get("/reorder-alerts", controllers.ReorderAlerts(deps.Analytics, logg))
			r.Get("/summary", controllers.AnalyticsSummary(deps.Analytics, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(deps.Settings, logg))
			r.Put("/", controllers.UpdateSettings(deps.Settings, logg))
		})
	})

	return r
}

func redisPinger(client *pkgredis.Client) pkgredis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
