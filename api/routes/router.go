package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/eggtrade-backend/api/controllers"
	"github.com/angelmondragon/eggtrade-backend/api/middleware"
	"github.com/angelmondragon/eggtrade-backend/internal/catalog"
	"github.com/angelmondragon/eggtrade-backend/internal/customers"
	"github.com/angelmondragon/eggtrade-backend/internal/expenses"
	"github.com/angelmondragon/eggtrade-backend/internal/inventory"
	"github.com/angelmondragon/eggtrade-backend/internal/pricing"
	"github.com/angelmondragon/eggtrade-backend/internal/sales"
	"github.com/angelmondragon/eggtrade-backend/pkg/config"
	"github.com/angelmondragon/eggtrade-backend/pkg/db"
	"github.com/angelmondragon/eggtrade-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/eggtrade-backend/pkg/redis"
)

// Services groups the domain services the API exposes.
type Services struct {
	Sales     sales.Service
	Pricing   pricing.Service
	Catalog   catalog.Service
	Customers customers.Service
	Inventory inventory.Service
	Expenses  expenses.Service
}

// NewRouter wires middleware, health, metrics and the v1 API. redisP and
// idempotencyStore may be nil when redis is disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	dbP db.Pinger,
	redisP controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{"db": dbP}
	if redisP != nil {
		deps["redis"] = redisP
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// applied per route so the middleware sees the full route pattern
	idem := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sales", func(r chi.Router) {
			r.With(idem).Post("/", controllers.SaleCreate(svc.Sales, logg))
			r.Get("/", controllers.SaleList(svc.Sales, logg))
			r.Post("/quote", controllers.SaleQuote(svc.Sales, logg))
			r.Get("/{saleId}", controllers.SaleGet(svc.Sales, logg))
			r.Put("/{saleId}", controllers.SaleUpdate(svc.Sales, logg))
			r.Delete("/{saleId}", controllers.SaleDelete(svc.Sales, logg))
		})

		r.Get("/pricing/unit-price", controllers.PricingUnitPrice(svc.Pricing, logg))

		r.Route("/egg-types", func(r chi.Router) {
			r.Post("/", controllers.EggTypeCreate(svc.Catalog, logg))
			r.Get("/", controllers.EggTypeList(svc.Catalog, logg))
			r.Get("/{eggTypeId}", controllers.EggTypeGet(svc.Catalog, logg))
			r.Put("/{eggTypeId}", controllers.EggTypeUpdate(svc.Catalog, logg))
			r.Delete("/{eggTypeId}", controllers.EggTypeDelete(svc.Catalog, logg))
		})

		r.Route("/price-tiers", func(r chi.Router) {
			r.Post("/", controllers.PriceTierCreate(svc.Catalog, logg))
			r.Get("/", controllers.PriceTierList(svc.Catalog, logg))
			r.Get("/{priceTierId}", controllers.PriceTierGet(svc.Catalog, logg))
			r.Put("/{priceTierId}", controllers.PriceTierUpdate(svc.Catalog, logg))
			r.Delete("/{priceTierId}", controllers.PriceTierDelete(svc.Catalog, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(svc.Customers, logg))
			r.Get("/", controllers.CustomerList(svc.Customers, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomerGet(svc.Customers, logg))
				r.Put("/", controllers.CustomerUpdate(svc.Customers, logg))
				r.Post("/deactivate", controllers.CustomerDeactivate(svc.Customers, logg))
				r.Get("/overrides", controllers.OverrideList(svc.Customers, logg))
				r.Post("/overrides", controllers.OverrideCreate(svc.Customers, logg))
				r.Delete("/overrides/{overrideId}", controllers.OverrideDelete(svc.Customers, logg))
			})
		})

		r.Route("/intake-logs", func(r chi.Router) {
			r.With(idem).Post("/", controllers.IntakeLogCreate(svc.Inventory, logg))
			r.Get("/", controllers.IntakeLogList(svc.Inventory, logg))
			r.Get("/{intakeLogId}", controllers.IntakeLogGet(svc.Inventory, logg))
			r.Put("/{intakeLogId}", controllers.IntakeLogUpdate(svc.Inventory, logg))
			r.Delete("/{intakeLogId}", controllers.IntakeLogDelete(svc.Inventory, logg))
		})

		r.Route("/expense-categories", func(r chi.Router) {
			r.Post("/", controllers.ExpenseCategoryCreate(svc.Expenses, logg))
			r.Get("/", controllers.ExpenseCategoryList(svc.Expenses, logg))
		})

		r.Route("/expenses", func(r chi.Router) {
			r.With(idem).Post("/", controllers.ExpenseCreate(svc.Expenses, logg))
			r.Get("/", controllers.ExpenseList(svc.Expenses, logg))
			r.Get("/{expenseId}", controllers.ExpenseGet(svc.Expenses, logg))
			r.Put("/{expenseId}", controllers.ExpenseUpdate(svc.Expenses, logg))
			r.Delete("/{expenseId}", controllers.ExpenseDelete(svc.Expenses, logg))
		})
	})

	return r
}
