package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/martsys/inventory-backend/internal/catalog"
	"github.com/martsys/inventory-backend/internal/categories"
	"github.com/martsys/inventory-backend/internal/ledger"
	"github.com/martsys/inventory-backend/internal/reconcile"
	"github.com/martsys/inventory-backend/internal/simulator"
	"github.com/martsys/inventory-backend/pkg/config"
	"github.com/martsys/inventory-backend/pkg/db"
	"github.com/martsys/inventory-backend/pkg/logger"
	"github.com/martsys/inventory-backend/pkg/migrate"
)

// The simulator fills an empty database with a plausible trading history.
// It only talks to the reconciliation engine, so the generated ledger
// replays exactly like real traffic would.
func main() {
	logg := logger.New(logger.Options{ServiceName: "simulator"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "simulator",
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

	conn := dbClient.DB()
	engine, err := reconcile.NewEngine(dbClient, ledger.NewRepository(conn), nil, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation engine", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(conn), dbClient, engine)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	categoryService, err := categories.NewService(categories.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	sim, err := simulator.New(cfg.Simulator, catalogService, categoryService, engine, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create simulator", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"days": cfg.Simulator.Days,
		"seed": cfg.Simulator.Seed,
	})
	report, err := sim.Run(ctx)
	if err != nil {
		logg.Error(ctx, "simulation failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"products_seeded": report.ProductsSeeded,
		"checkouts":       report.Checkouts,
		"restocks":        report.Restocks,
		"lines_rejected":  report.LinesRejected,
	})
	logg.Info(ctx, "simulation finished, ledger verified")
}
