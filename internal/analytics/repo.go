package analytics

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db/models"
)

// Repository runs the read-only aggregate queries behind the reports. It
// never mutates snapshots or the ledger.
type Repository interface {
	TopSellers(ctx context.Context, limit int) ([]models.Product, error)
	LowStock(ctx context.Context) ([]models.Product, error)
	ProductCount(ctx context.Context) (int64, error)
	StockValue(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// TopSellers orders by units sold, then by lifetime revenue, then by name so
// the ranking is stable across runs.
func (r *repository) TopSellers(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("units_sold DESC").
		Order("(units_sold * unit_price) DESC").
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) LowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("quantity_on_hand <= reorder_level").
		Order("quantity_on_hand ASC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ProductCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

func (r *repository) StockValue(ctx context.Context) (decimal.Decimal, error) {
	var value decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("SUM(quantity_on_hand * unit_price)").
		Scan(&value).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !value.Valid {
		return decimal.Zero, nil
	}
	return value.Decimal, nil
}
