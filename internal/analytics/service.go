package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martsys/inventory-backend/internal/ledger"
	"github.com/martsys/inventory-backend/pkg/db/models"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
)

// BestSeller is one row of the sales ranking. Revenue is lifetime units sold
// priced at the current unit price.
type BestSeller struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitsSold int             `json:"units_sold"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Summary is the dashboard overview.
type Summary struct {
	ProductCount       int64                     `json:"product_count"`
	StockValue         decimal.Decimal           `json:"stock_value"`
	LowStockCount      int                       `json:"low_stock_count"`
	RecentTransactions []models.StockTransaction `json:"recent_transactions"`
}

// Service produces read-only reports over the snapshot table and the ledger.
type Service interface {
	BestSellers(ctx context.Context, limit int) ([]BestSeller, error)
	ReorderAlerts(ctx context.Context) ([]models.Product, error)
	Summary(ctx context.Context, recentLimit int) (*Summary, error)
}

type service struct {
	repo   Repository
	ledger ledger.Service
}

// NewService wires an analytics service over the snapshot repository and the
// ledger reader.
func NewService(repo Repository, ledgerSvc ledger.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{repo: repo, ledger: ledgerSvc}, nil
}

func (s *service) BestSellers(ctx context.Context, limit int) ([]BestSeller, error) {
	rows, err := s.repo.TopSellers(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank best sellers")
	}

	out := make([]BestSeller, 0, len(rows))
	for _, p := range rows {
		out = append(out, BestSeller{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			UnitsSold: p.UnitsSold,
			UnitPrice: p.UnitPrice,
			Revenue:   p.UnitPrice.Mul(decimal.NewFromInt(int64(p.UnitsSold))),
		})
	}
	return out, nil
}

func (s *service) ReorderAlerts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reorder alerts")
	}
	return rows, nil
}

func (s *service) Summary(ctx context.Context, recentLimit int) (*Summary, error) {
	count, err := s.repo.ProductCount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	value, err := s.repo.StockValue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute stock value")
	}
	low, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reorder alerts")
	}
	recent, err := s.ledger.Recent(ctx, recentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent transactions")
	}

	return &Summary{
		ProductCount:       count,
		StockValue:         value,
		LowStockCount:      len(low),
		RecentTransactions: recent,
	}, nil
}
