package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simovate/simstack-backend/api/controllers"
	"github.com/simovate/simstack-backend/api/middleware"
	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/orders"
	"github.com/simovate/simstack-backend/internal/receipts"
	"github.com/simovate/simstack-backend/internal/reports"
	"github.com/simovate/simstack-backend/internal/wallet"
	"github.com/simovate/simstack-backend/pkg/config"
	"github.com/simovate/simstack-backend/pkg/enums"
	"github.com/simovate/simstack-backend/pkg/logger"
	pkgredis "github.com/simovate/simstack-backend/pkg/redis"
)

type Services struct {
	Accounts accounts.Service
	Catalog  catalog.Service
	Orders   orders.Service
	Wallet   wallet.Service
	Receipts receipts.Service
	Reports  reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *pkgredis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	readiness := map[string]controllers.Pinger{"postgres": dbPinger}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	hq := string(enums.AccountRoleHeadquarter)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/variants", controllers.CatalogList(svcs.Catalog, svcs.Accounts, logg))
			r.Get("/variants/{variantId}", controllers.CatalogDetail(svcs.Catalog, svcs.Accounts, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(hq, logg))
				r.Post("/lots", controllers.LotCreate(svcs.Catalog, logg))
				r.Get("/variants/{variantId}/lots", controllers.LotList(svcs.Catalog, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
			r.Post("/reservations", controllers.ReservationCreate(svcs.Orders, logg))
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/{orderId}/confirm", controllers.ReservationConfirm(svcs.Orders, logg))
			r.Post("/{orderId}/lines", controllers.ReservationLineAdd(svcs.Orders, logg))
			r.Patch("/{orderId}/lines/{lineId}", controllers.ReservationLineUpdate(svcs.Orders, logg))
			r.Delete("/{orderId}/lines/{lineId}", controllers.OrderLineDelete(svcs.Orders, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(svcs.Orders, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(svcs.Wallet, logg))
			r.Get("/entries", controllers.WalletEntries(svcs.Wallet, logg))
			r.With(middleware.RequireRole(hq, logg)).Post("/deposits", controllers.WalletDeposit(svcs.Wallet, logg))
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Use(middleware.RequireRole(hq, logg))
			r.Get("/", controllers.ReceiptList(svcs.Receipts, logg))
			r.Get("/{receiptId}", controllers.ReceiptDetail(svcs.Receipts, logg))
			r.Post("/", controllers.ReceiptCreateManual(svcs.Receipts, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily", controllers.ReportDaily(svcs.Reports, logg))
			r.Get("/", controllers.ReportRange(svcs.Reports, logg))
		})
	})

	return r
}
