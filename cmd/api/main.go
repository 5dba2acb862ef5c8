package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakuapp/saku-backend/api/routes"
	"github.com/sakuapp/saku-backend/internal/accounts"
	"github.com/sakuapp/saku-backend/internal/apikeys"
	"github.com/sakuapp/saku-backend/internal/categories"
	"github.com/sakuapp/saku-backend/internal/freedom"
	"github.com/sakuapp/saku-backend/internal/ledger"
	"github.com/sakuapp/saku-backend/internal/stocks"
	"github.com/sakuapp/saku-backend/pkg/config"
	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/logger"
	"github.com/sakuapp/saku-backend/pkg/metrics"
	"github.com/sakuapp/saku-backend/pkg/migrate"
	"github.com/sakuapp/saku-backend/pkg/quotes"
	"github.com/sakuapp/saku-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient, ledgerMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(accounts.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	categoriesService, err := categories.NewService(categories.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	apiKeyService, err := apikeys.NewService(apikeys.NewRepository(dbClient.DB()), redisClient, cfg.APIKeys, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create api key service", err)
		os.Exit(1)
	}

	quoteClient, err := quotes.NewClient(cfg.Quotes.BaseURL, cfg.Quotes.APIKey, quotes.WithTimeout(cfg.Quotes.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create quote client", err)
		os.Exit(1)
	}
	quoteSource := quotes.NewCachedSource(quoteClient, redisClient, cfg.Quotes.CacheTTL)

	stocksService, err := stocks.NewService(stocks.NewRepository(dbClient.DB()), quoteSource, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stocks service", err)
		os.Exit(1)
	}

	freedomService, err := freedom.NewService(freedom.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create freedom service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			Registry:    registry,
			RateLimiter: redisClient,
			Ledger:      ledgerService,
			Accounts:    accountsService,
			Categories:  categoriesService,
			Stocks:      stocksService,
			Freedom:     freedomService,
			APIKeys:     apiKeyService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
