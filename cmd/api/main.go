package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/simovate/simstack-backend/api/routes"
	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/inventory"
	"github.com/simovate/simstack-backend/internal/orders"
	"github.com/simovate/simstack-backend/internal/pricing"
	"github.com/simovate/simstack-backend/internal/receipts"
	"github.com/simovate/simstack-backend/internal/reports"
	"github.com/simovate/simstack-backend/internal/wallet"
	"github.com/simovate/simstack-backend/pkg/config"
	"github.com/simovate/simstack-backend/pkg/db"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/migrate"
	"github.com/simovate/simstack-backend/pkg/outbox"
	"github.com/simovate/simstack-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	svcs, err := buildServices(dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down")
}

func buildServices(dbClient *db.Client, logg *logger.Logger) (routes.Services, error) {
	conn := dbClient.DB()

	accountsSvc, err := accounts.NewService(accounts.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	pricingSvc, err := pricing.NewService(pricing.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	inventoryRepo := inventory.NewRepository(conn)
	inventorySvc, err := inventory.NewService(inventoryRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	catalogRepo := catalog.NewRepository(conn)
	catalogSvc, err := catalog.NewService(catalogRepo, pricingSvc, inventoryRepo, inventorySvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	walletSvc, err := wallet.NewService(wallet.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(dbClient, ordersRepo, catalogRepo, accountsSvc, inventorySvc, walletSvc, outboxSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	receiptsSvc, err := receipts.NewService(dbClient, receipts.NewRepository(conn), ordersRepo, accountsSvc, catalogRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	reportsSvc, err := reports.NewService(reports.NewRepository(conn), logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Accounts: accountsSvc,
		Catalog:  catalogSvc,
		Orders:   ordersSvc,
		Wallet:   walletSvc,
		Receipts: receiptsSvc,
		Reports:  reportsSvc,
	}, nil
}
