package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/simovate/simstack-backend/internal/accounts"
	"github.com/simovate/simstack-backend/internal/catalog"
	"github.com/simovate/simstack-backend/internal/orders"
	"github.com/simovate/simstack-backend/internal/receipts"
	"github.com/simovate/simstack-backend/internal/reports"
	"github.com/simovate/simstack-backend/pkg/config"
	"github.com/simovate/simstack-backend/pkg/db"
	"github.com/simovate/simstack-backend/pkg/enums"
	"github.com/simovate/simstack-backend/pkg/logger"
	"github.com/simovate/simstack-backend/pkg/migrate"
	"github.com/simovate/simstack-backend/pkg/outbox"
)

// The worker drains the outbox: receipts are issued off order.created and
// order.paid, daily sales rollups recompute off every order event.
func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	dispatcher, err := buildDispatcher(cfg, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire dispatcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting outbox worker")

	dispatcher.Run(ctx)

	logg.Info(ctx, "outbox worker shutting down gracefully")
}

func buildDispatcher(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (*outbox.Dispatcher, error) {
	conn := dbClient.DB()

	accountsSvc, err := accounts.NewService(accounts.NewRepository(conn))
	if err != nil {
		return nil, err
	}

	ordersRepo := orders.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)

	receiptsSvc, err := receipts.NewService(dbClient, receipts.NewRepository(conn), ordersRepo, accountsSvc, catalogRepo, logg)
	if err != nil {
		return nil, err
	}

	reportsSvc, err := reports.NewService(reports.NewRepository(conn), logg)
	if err != nil {
		return nil, err
	}

	dispatcher, err := outbox.NewDispatcher(outbox.NewRepository(conn), logg, outbox.DispatcherOptions{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	receiptHandler := receipts.NewOrderEventHandler(receiptsSvc)
	dispatcher.Register(enums.EventOrderCreated, receiptHandler)
	dispatcher.Register(enums.EventOrderPaid, receiptHandler)

	reportHandler := reports.NewOrderEventHandler(reportsSvc)
	dispatcher.Register(enums.EventOrderCreated, reportHandler)
	dispatcher.Register(enums.EventOrderPaid, reportHandler)
	dispatcher.Register(enums.EventOrderDeleted, reportHandler)

	return dispatcher, nil
}
