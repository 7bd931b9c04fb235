package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db/models"
)

// Filter narrows a ledger scan. Zero fields are ignored.
type Filter struct {
	ProductID *uuid.UUID
	GroupID   string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// Sums holds the replayed ledger totals for one product.
type Sums struct {
	Additions int
	Sales     int
}

// Repository manages persistence for stock transactions. The table is
// append-only: there are no update or delete paths.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.StockTransaction) error
	List(ctx context.Context, filter Filter) ([]models.StockTransaction, error)
	Recent(ctx context.Context, limit int) ([]models.StockTransaction, error)
	SumsByProduct(ctx context.Context, productID uuid.UUID) (Sums, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.StockTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.StockTransaction, error) {
	qb := r.db.WithContext(ctx).Model(&models.StockTransaction{})
	if filter.ProductID != nil {
		qb = qb.Where("product_id = ?", *filter.ProductID)
	}
	if filter.GroupID != "" {
		qb = qb.Where("group_id = ?", filter.GroupID)
	}
	if filter.From != nil {
		qb = qb.Where("occurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		qb = qb.Where("occurred_at <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		qb = qb.Limit(filter.Limit)
	}

	var rows []models.StockTransaction
	if err := qb.Order("occurred_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]models.StockTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.StockTransaction
	if err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SumsByProduct(ctx context.Context, productID uuid.UUID) (Sums, error) {
	type row struct {
		Additions int
		Sales     int
	}
	var result row
	err := r.db.WithContext(ctx).
		Model(&models.StockTransaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN kind = ? THEN quantity ELSE 0 END), 0) AS additions, "+
				"COALESCE(SUM(CASE WHEN kind = ? THEN quantity ELSE 0 END), 0) AS sales",
			"addition", "sale",
		).
		Where("product_id = ?", productID).
		Scan(&result).Error
	if err != nil {
		return Sums{}, err
	}
	return Sums{Additions: result.Additions, Sales: result.Sales}, nil
}
