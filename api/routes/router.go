package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dvpgiftcenter/giftshop-backend/api/controllers"
	"github.com/dvpgiftcenter/giftshop-backend/api/middleware"
	"github.com/dvpgiftcenter/giftshop-backend/internal/catalog"
	"github.com/dvpgiftcenter/giftshop-backend/internal/identity"
	"github.com/dvpgiftcenter/giftshop-backend/internal/inventory"
	"github.com/dvpgiftcenter/giftshop-backend/internal/receipts"
	"github.com/dvpgiftcenter/giftshop-backend/internal/sales"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/config"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/db"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/enums"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/logger"
	"github.com/dvpgiftcenter/giftshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	identityService identity.Service,
	catalogService catalog.Service,
	salesService sales.Service,
	receiptsService receipts.Service,
	inventoryRepo inventory.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(identityService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/pos", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, string(enums.UserRoleAdmin), string(enums.UserRoleCashier)))

			r.Get("/products", controllers.POSListProducts(catalogService, logg))
			r.Get("/products/search", controllers.POSSearchProducts(catalogService, logg))
			r.Get("/products/barcode/{barcode}", controllers.POSLookupBarcode(catalogService, logg))
			r.Get("/products/{productId}/movements", controllers.ProductStockMovements(inventoryRepo, logg))

			// Flat patterns keep the idempotency route matcher exact.
			r.Post("/transactions", controllers.POSCreateTransaction(salesService, logg))
			r.Get("/transactions", controllers.POSTransactionHistory(receiptsService, logg))
			r.Get("/transactions/{transactionId}/receipt", controllers.POSReceipt(receiptsService, logg))
			r.Get("/transactions/{transactionId}/movements", controllers.TransactionStockMovements(inventoryRepo, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, string(enums.UserRoleCustomer)))
			r.Post("/checkout", controllers.Checkout(salesService, logg))
			r.Get("/orders/{orderId}", controllers.OrderDetail(receiptsService, logg))
		})
	})

	return r
}
