package simulator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/internal/catalog"
	"github.com/martsys/inventory-backend/internal/categories"
	"github.com/martsys/inventory-backend/internal/ledger"
	"github.com/martsys/inventory-backend/internal/reconcile"
	"github.com/martsys/inventory-backend/pkg/config"
	"github.com/martsys/inventory-backend/pkg/db"
	"github.com/martsys/inventory-backend/pkg/db/models"
)

func newTestSimulator(t *testing.T, cfg config.SimulatorConfig) (*Simulator, *gorm.DB) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Category{}, &models.Product{}, &models.StockTransaction{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	dbc := db.NewWithConn(conn)
	ledgerRepo := ledger.NewRepository(conn)
	engine, err := reconcile.NewEngine(dbc, ledgerRepo, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), dbc, engine)
	if err != nil {
		t.Fatalf("catalog.NewService error: %v", err)
	}
	categorySvc, err := categories.NewService(categories.NewRepository(conn))
	if err != nil {
		t.Fatalf("categories.NewService error: %v", err)
	}

	sim, err := New(cfg, catalogSvc, categorySvc, engine, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return sim, conn
}

func defaultCfg() config.SimulatorConfig {
	return config.SimulatorConfig{
		Days:            7,
		Seed:            42,
		MaxCheckoutsDay: 6,
		MaxLinesPerSale: 3,
		SeedCatalog:     true,
	}
}

func TestRunSeedsCatalogAndGeneratesHistory(t *testing.T) {
	sim, conn := newTestSimulator(t, defaultCfg())

	report, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.ProductsSeeded != len(defaultProducts) {
		t.Fatalf("expected %d seeded products, got %d", len(defaultProducts), report.ProductsSeeded)
	}
	if report.Checkouts == 0 {
		t.Fatal("expected at least one checkout over a week")
	}

	var categoryCount int64
	if err := conn.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if categoryCount != int64(len(defaultCategories)) {
		t.Fatalf("expected %d categories, got %d", len(defaultCategories), categoryCount)
	}

	var txnCount int64
	if err := conn.Model(&models.StockTransaction{}).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if txnCount == 0 {
		t.Fatal("expected ledger entries after the run")
	}
}

func TestRunOutputReplaysFromLedger(t *testing.T) {
	sim, conn := newTestSimulator(t, defaultCfg())

	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	ledgerRepo := ledger.NewRepository(conn)
	var products []models.Product
	if err := conn.Find(&products).Error; err != nil {
		t.Fatalf("load products: %v", err)
	}
	for _, p := range products {
		sums, err := ledgerRepo.SumsByProduct(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("SumsByProduct(%s): %v", p.Name, err)
		}
		expected := p.BaselineQuantity + sums.Additions - sums.Sales
		if p.QuantityOnHand != expected {
			t.Fatalf("%s: snapshot %d does not replay from ledger (expected %d)", p.Name, p.QuantityOnHand, expected)
		}
		if p.UnitsSold != sums.Sales {
			t.Fatalf("%s: units sold %d does not match ledger sales %d", p.Name, p.UnitsSold, sums.Sales)
		}
		if p.QuantityOnHand < 0 {
			t.Fatalf("%s: negative stock %d", p.Name, p.QuantityOnHand)
		}
	}
}

func TestRunIsReproducibleWithFixedSeed(t *testing.T) {
	run := func(suffix string) int64 {
		name := strings.ReplaceAll(t.Name(), "/", "_") + suffix
		conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
			SkipDefaultTransaction: true,
		})
		if err != nil {
			t.Fatalf("failed to open sqlite: %v", err)
		}
		if err := conn.AutoMigrate(&models.Category{}, &models.Product{}, &models.StockTransaction{}); err != nil {
			t.Fatalf("failed to migrate sqlite: %v", err)
		}
		dbc := db.NewWithConn(conn)
		engine, err := reconcile.NewEngine(dbc, ledger.NewRepository(conn), nil, nil)
		if err != nil {
			t.Fatalf("NewEngine error: %v", err)
		}
		catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), dbc, engine)
		if err != nil {
			t.Fatalf("catalog.NewService error: %v", err)
		}
		categorySvc, err := categories.NewService(categories.NewRepository(conn))
		if err != nil {
			t.Fatalf("categories.NewService error: %v", err)
		}
		sim, err := New(defaultCfg(), catalogSvc, categorySvc, engine, nil)
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		if _, err := sim.Run(context.Background()); err != nil {
			t.Fatalf("Run error: %v", err)
		}
		var count int64
		if err := conn.Model(&models.StockTransaction{}).Count(&count).Error; err != nil {
			t.Fatalf("count transactions: %v", err)
		}
		return count
	}

	if a, b := run("_a"), run("_b"); a != b {
		t.Fatalf("same seed must produce the same history length, got %d and %d", a, b)
	}
}

func TestRunRefusesEmptyCatalogWhenSeedingDisabled(t *testing.T) {
	cfg := defaultCfg()
	cfg.SeedCatalog = false
	sim, _ := newTestSimulator(t, cfg)

	if _, err := sim.Run(context.Background()); err == nil {
		t.Fatal("expected error for empty catalog with seeding disabled")
	}
}
