package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakuapp/saku-backend/api/controllers"
	"github.com/sakuapp/saku-backend/api/middleware"
	"github.com/sakuapp/saku-backend/internal/accounts"
	"github.com/sakuapp/saku-backend/internal/apikeys"
	"github.com/sakuapp/saku-backend/internal/categories"
	"github.com/sakuapp/saku-backend/internal/freedom"
	"github.com/sakuapp/saku-backend/internal/ledger"
	"github.com/sakuapp/saku-backend/internal/stocks"
	"github.com/sakuapp/saku-backend/pkg/config"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

// RateLimiterStore is the redis surface the per-key limiter uses.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps bundles everything the router wires together.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	// Registry backs /metrics; nil disables the endpoint.
	Registry *prometheus.Registry

	// RateLimiter may be nil; the limiter then passes everything through.
	RateLimiter RateLimiterStore

	Ledger     ledger.Service
	Accounts   accounts.Service
	Categories categories.Service
	Stocks     stocks.Service
	Freedom    freedom.Service
	APIKeys    apikeys.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		// Key management is bootstrap-token guarded, not key-authenticated.
		r.Route("/keys", func(r chi.Router) {
			r.Use(middleware.BootstrapAuth(cfg.APIKeys.BootstrapToken, logg))
			r.Post("/", controllers.GenerateAPIKey(deps.APIKeys, logg))
			r.Get("/", controllers.ListAPIKeys(deps.APIKeys, logg))
			r.Delete("/{keyId}", controllers.RevokeAPIKey(deps.APIKeys, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(deps.APIKeys, logg))
			r.Use(middleware.RateLimit(cfg.RateLimit, deps.RateLimiter, logg))

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", controllers.ListAccounts(deps.Accounts, logg))
				r.Post("/", controllers.CreateAccount(deps.Accounts, logg))
				r.Get("/{accountId}", controllers.GetAccount(deps.Accounts, logg))
				r.Patch("/{accountId}", controllers.UpdateAccount(deps.Accounts, logg))
				r.Delete("/{accountId}", controllers.DeleteAccount(deps.Accounts, logg))
				r.Get("/{accountId}/verify", controllers.VerifyAccount(deps.Ledger, logg))
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", controllers.ListTransactions(deps.Ledger, logg))
				r.Post("/", controllers.CreateTransaction(deps.Ledger, logg))
				r.Get("/{transactionId}", controllers.GetTransaction(deps.Ledger, logg))
				r.Delete("/{transactionId}", controllers.DeleteTransaction(deps.Ledger, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.ListCategories(deps.Categories, logg))
				r.Post("/", controllers.CreateCategory(deps.Categories, logg))
				r.Delete("/{categoryId}", controllers.DeleteCategory(deps.Categories, logg))
			})

			r.Get("/summary", controllers.Summary(deps.Ledger, logg))

			r.Route("/stocks", func(r chi.Router) {
				r.Get("/", controllers.ListStocks(deps.Stocks, logg))
				r.Post("/", controllers.CreateStock(deps.Stocks, logg))
				r.Delete("/{stockId}", controllers.DeleteStock(deps.Stocks, logg))
			})

			r.Route("/freedom", func(r chi.Router) {
				r.Get("/latest", controllers.FreedomLatest(deps.Freedom, logg))
				r.Post("/", controllers.FreedomSave(deps.Freedom, logg))
				r.Post("/preview", controllers.FreedomPreview(deps.Freedom, logg))
			})
		})
	})

	return r
}
