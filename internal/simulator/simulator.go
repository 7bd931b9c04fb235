package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/martsys/inventory-backend/internal/catalog"
	"github.com/martsys/inventory-backend/internal/categories"
	"github.com/martsys/inventory-backend/internal/reconcile"
	"github.com/martsys/inventory-backend/pkg/config"
	"github.com/martsys/inventory-backend/pkg/db/models"
	"github.com/martsys/inventory-backend/pkg/enums"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
	"github.com/martsys/inventory-backend/pkg/logger"
)

// Simulator generates a realistic trading history. Every stock movement goes
// through the reconciliation engine, so a simulated database replays cleanly
// from its ledger just like a production one.
type Simulator struct {
	cfg        config.SimulatorConfig
	catalog    catalog.Service
	categories categories.Service
	engine     reconcile.Engine
	logg       *logger.Logger
	rng        *rand.Rand
}

// Report summarizes one simulation run.
type Report struct {
	ProductsSeeded int
	Checkouts      int
	Restocks       int
	LinesRejected  int
}

// New wires a simulator. Seed zero derives one from the clock so repeated
// runs differ; any other value makes the run reproducible.
func New(
	cfg config.SimulatorConfig,
	catalogSvc catalog.Service,
	categorySvc categories.Service,
	engine reconcile.Engine,
	logg *logger.Logger,
) (*Simulator, error) {
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if categorySvc == nil {
		return nil, fmt.Errorf("category service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("reconciliation engine required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		cfg:        cfg,
		catalog:    catalogSvc,
		categories: categorySvc,
		engine:     engine,
		logg:       logg,
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
	}, nil
}

type seedProduct struct {
	name     string
	category string
	price    string
	quantity int
	reorder  int
}

var defaultCategories = []string{"Groceries", "Bakery", "Dairy", "Confectionery", "Beverages", "Electronics"}

var defaultProducts = []seedProduct{
	{name: "Premium Coffee Beans", category: "Groceries", price: "15.99", quantity: 50, reorder: 10},
	{name: "Organic Honey", category: "Groceries", price: "12.50", quantity: 30, reorder: 5},
	{name: "Whole Wheat Bread", category: "Bakery", price: "3.99", quantity: 15, reorder: 20},
	{name: "Fresh Milk 1L", category: "Dairy", price: "2.49", quantity: 45, reorder: 15},
	{name: "Chocolate Bar", category: "Confectionery", price: "1.20", quantity: 100, reorder: 25},
}

// Run seeds the catalog if requested and then walks day by day through the
// configured window, restocking and selling through the engine. It finishes
// with a full ledger verification.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	products, err := s.catalog.Search(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		if !s.cfg.SeedCatalog {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is empty and seeding is disabled")
		}
		if products, err = s.seedCatalog(ctx); err != nil {
			return nil, err
		}
		report.ProductsSeeded = len(products)
	}

	start := time.Now().UTC().AddDate(0, 0, -s.cfg.Days)
	for day := 0; day < s.cfg.Days; day++ {
		dayStart := start.AddDate(0, 0, day)
		if err := s.simulateDay(ctx, dayStart, products, report); err != nil {
			return nil, err
		}
	}

	if err := s.engine.VerifyAll(ctx); err != nil {
		return nil, fmt.Errorf("post-run verification failed: %w", err)
	}
	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf(
			"simulation complete: %d checkouts, %d restocks, %d lines rejected",
			report.Checkouts, report.Restocks, report.LinesRejected,
		))
	}
	return report, nil
}

func (s *Simulator) seedCatalog(ctx context.Context) ([]models.Product, error) {
	for _, name := range defaultCategories {
		if _, err := s.categories.Add(ctx, name); err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
				continue
			}
			return nil, err
		}
	}

	for _, p := range defaultProducts {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return nil, fmt.Errorf("bad seed price %q: %w", p.price, err)
		}
		if _, err := s.catalog.Create(ctx, catalog.CreateProductInput{
			Name:            p.name,
			Category:        p.category,
			UnitPrice:       price,
			InitialQuantity: p.quantity,
			ReorderLevel:    p.reorder,
		}); err != nil {
			return nil, err
		}
	}
	return s.catalog.Search(ctx, "")
}

// simulateDay runs an occasional morning restock followed by a random number
// of checkouts spread across trading hours.
func (s *Simulator) simulateDay(ctx context.Context, dayStart time.Time, products []models.Product, report *Report) error {
	if s.rng.IntN(4) == 0 {
		product := products[s.rng.IntN(len(products))]
		at := dayStart.Add(8 * time.Hour).Add(time.Duration(s.rng.IntN(3600)) * time.Second)
		qty := 10 + s.rng.IntN(40)
		_, err := s.engine.RecordEvent(ctx, reconcile.RecordEventInput{
			ProductID:  product.ID,
			Kind:       enums.TransactionKindAddition,
			Quantity:   qty,
			OccurredAt: &at,
		})
		if err != nil {
			return err
		}
		report.Restocks++
	}

	checkouts := 1 + s.rng.IntN(s.cfg.MaxCheckoutsDay)
	for i := 0; i < checkouts; i++ {
		at := dayStart.Add(9 * time.Hour).Add(time.Duration(s.rng.IntN(10*3600)) * time.Second)
		lines := s.buildCheckout(products, at)
		if len(lines) == 0 {
			continue
		}

		_, err := s.engine.RecordBatch(ctx, "", lines)
		if err != nil {
			// Sold out lines are an expected outcome of random demand. The
			// whole batch rolls back and the day moves on.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
				report.LinesRejected++
				continue
			}
			return err
		}
		report.Checkouts++
	}
	return nil
}

func (s *Simulator) buildCheckout(products []models.Product, at time.Time) []reconcile.BatchLine {
	count := 1 + s.rng.IntN(s.cfg.MaxLinesPerSale)
	picked := map[int]bool{}
	var lines []reconcile.BatchLine
	for len(lines) < count && len(picked) < len(products) {
		idx := s.rng.IntN(len(products))
		if picked[idx] {
			continue
		}
		picked[idx] = true
		occurredAt := at
		lines = append(lines, reconcile.BatchLine{
			ProductID:  products[idx].ID,
			Kind:       enums.TransactionKindSale,
			Quantity:   1 + s.rng.IntN(3),
			OccurredAt: &occurredAt,
		})
	}
	return lines
}
