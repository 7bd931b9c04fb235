package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/martsys/inventory-backend/pkg/db/models"
)

// Service exposes read and append access to the stock transaction ledger.
// Stock validation is deliberately absent here: callers that mutate snapshots
// go through the reconciliation engine, which owns that check.
type Service interface {
	Append(ctx context.Context, txn *models.StockTransaction) error
	Scan(ctx context.Context, filter Filter) ([]models.StockTransaction, error)
	Recent(ctx context.Context, limit int) ([]models.StockTransaction, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, txn *models.StockTransaction) error {
	if txn == nil {
		return fmt.Errorf("transaction is required")
	}
	if txn.ProductID == uuid.Nil {
		return fmt.Errorf("product id is required")
	}
	if !txn.Kind.IsValid() {
		return fmt.Errorf("invalid transaction kind %q", txn.Kind)
	}
	if txn.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.OccurredAt.IsZero() {
		txn.OccurredAt = time.Now().UTC()
	}

	return s.repo.Create(ctx, txn)
}

func (s *service) Scan(ctx context.Context, filter Filter) ([]models.StockTransaction, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Recent(ctx context.Context, limit int) ([]models.StockTransaction, error) {
	return s.repo.Recent(ctx, limit)
}
