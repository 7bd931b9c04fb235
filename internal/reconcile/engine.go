package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/internal/ledger"
	"github.com/martsys/inventory-backend/pkg/db"
	"github.com/martsys/inventory-backend/pkg/db/models"
	"github.com/martsys/inventory-backend/pkg/enums"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
	"github.com/martsys/inventory-backend/pkg/logger"
	"github.com/martsys/inventory-backend/pkg/metrics"
)

// Engine is the only component allowed to mutate stock snapshots. Every
// mutation appends a ledger entry and updates the snapshot in one database
// transaction, so the pair can never diverge on a committed write.
type Engine interface {
	RecordEvent(ctx context.Context, input RecordEventInput) (*EventResult, error)
	RecordBatch(ctx context.Context, groupID string, lines []BatchLine) (*BatchResult, error)
	RecordAddition(ctx context.Context, productID uuid.UUID, quantity int) error
	RecordAdditionIn(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error
	RebuildFromLedger(ctx context.Context, productID uuid.UUID, repair bool) (*RebuildReport, error)
	VerifyAll(ctx context.Context) error
}

// RecordEventInput describes a single stock movement.
type RecordEventInput struct {
	ProductID         uuid.UUID
	Kind              enums.TransactionKind
	Quantity          int
	UnitPriceOverride *decimal.Decimal
	GroupID           string
	OccurredAt        *time.Time
}

// BatchLine is one movement inside an atomic batch.
type BatchLine struct {
	ProductID         uuid.UUID
	Kind              enums.TransactionKind
	Quantity          int
	UnitPriceOverride *decimal.Decimal
	OccurredAt        *time.Time
}

// EventResult confirms a committed movement.
type EventResult struct {
	Message        string                   `json:"message"`
	Transaction    *models.StockTransaction `json:"transaction"`
	QuantityOnHand int                      `json:"quantity_on_hand"`
	ReorderAlert   bool                     `json:"reorder_alert"`
}

// BatchResult confirms an atomic batch.
type BatchResult struct {
	GroupID     string          `json:"group_id"`
	Lines       []EventResult   `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type engine struct {
	dbc     *db.Client
	ledger  ledger.Repository
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
}

// NewEngine wires the reconciliation engine with its dependencies. Metrics
// and logger may be nil.
func NewEngine(dbc *db.Client, ledgerRepo ledger.Repository, m *metrics.EngineMetrics, logg *logger.Logger) (Engine, error) {
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &engine{dbc: dbc, ledger: ledgerRepo, metrics: m, logg: logg}, nil
}

func (e *engine) RecordEvent(ctx context.Context, input RecordEventInput) (*EventResult, error) {
	started := time.Now()

	groupID := input.GroupID
	if groupID == "" {
		groupID = defaultGroupID(input.Kind)
	}

	var result *EventResult
	err := e.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		result, txErr = e.recordInTx(ctx, tx, groupID, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	e.metrics.IncRecorded(string(input.Kind))
	e.metrics.ObserveDuration("record_event", time.Since(started))
	if e.logg != nil {
		logCtx := e.logg.WithProductID(ctx, input.ProductID.String())
		logCtx = e.logg.WithGroupID(logCtx, groupID)
		e.logg.Info(logCtx, result.Message)
	}
	return result, nil
}

func (e *engine) RecordBatch(ctx context.Context, groupID string, lines []BatchLine) (*BatchResult, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch requires at least one line")
	}

	started := time.Now()
	if groupID == "" {
		groupID = defaultGroupID(enums.TransactionKindSale)
	}

	result := &BatchResult{GroupID: groupID, TotalAmount: decimal.Zero}
	err := e.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		for _, line := range lines {
			lineResult, txErr := e.recordInTx(ctx, tx, groupID, RecordEventInput{
				ProductID:         line.ProductID,
				Kind:              line.Kind,
				Quantity:          line.Quantity,
				UnitPriceOverride: line.UnitPriceOverride,
				GroupID:           groupID,
				OccurredAt:        line.OccurredAt,
			})
			if txErr != nil {
				return txErr
			}
			result.Lines = append(result.Lines, *lineResult)
			result.TotalAmount = result.TotalAmount.Add(lineResult.Transaction.LineTotal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		e.metrics.IncRecorded(string(line.Kind))
	}
	e.metrics.ObserveDuration("record_batch", time.Since(started))
	if e.logg != nil {
		logCtx := e.logg.WithGroupID(ctx, groupID)
		e.logg.Info(logCtx, fmt.Sprintf("recorded batch of %d stock events", len(lines)))
	}
	return result, nil
}

// RecordAddition restocks a product through the standard event path.
func (e *engine) RecordAddition(ctx context.Context, productID uuid.UUID, quantity int) error {
	_, err := e.RecordEvent(ctx, RecordEventInput{
		ProductID: productID,
		Kind:      enums.TransactionKindAddition,
		Quantity:  quantity,
	})
	return err
}

// RecordAdditionIn restocks inside the caller's open transaction, so the
// addition commits or rolls back together with the caller's own writes.
func (e *engine) RecordAdditionIn(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error {
	if tx == nil {
		return e.RecordAddition(ctx, productID, quantity)
	}
	_, err := e.recordInTx(ctx, tx, defaultGroupID(enums.TransactionKindAddition), RecordEventInput{
		ProductID: productID,
		Kind:      enums.TransactionKindAddition,
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}
	e.metrics.IncRecorded(string(enums.TransactionKindAddition))
	return nil
}

// recordInTx performs the load, validate, snapshot update, and ledger append
// steps for one movement inside the caller's transaction. The SALE decrement
// is a conditional update guarded at the row, so concurrent writers cannot
// drive quantity_on_hand below zero.
func (e *engine) recordInTx(ctx context.Context, tx *gorm.DB, groupID string, input RecordEventInput) (*EventResult, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction kind %q", input.Kind))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if input.UnitPriceOverride != nil && input.UnitPriceOverride.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	var product models.Product
	if err := tx.WithContext(ctx).First(&product, "id = ?", input.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", input.ProductID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	price := product.UnitPrice
	if input.UnitPriceOverride != nil {
		price = *input.UnitPriceOverride
	}

	occurredAt := time.Now().UTC()
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = input.OccurredAt.UTC()
	}

	now := time.Now().UTC()
	switch input.Kind {
	case enums.TransactionKindSale:
		res := tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND quantity_on_hand >= ?", product.ID, input.Quantity).
			Updates(map[string]any{
				"quantity_on_hand": gorm.Expr("quantity_on_hand - ?", input.Quantity),
				"units_sold":       gorm.Expr("units_sold + ?", input.Quantity),
				"updated_at":       now,
			})
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
		}
		if res.RowsAffected == 0 {
			e.metrics.IncRejected("insufficient_stock")
			return nil, pkgerrors.New(
				pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("Insufficient stock. Current: %d", product.QuantityOnHand),
			).WithDetails(map[string]any{
				"product_id":       product.ID,
				"quantity_on_hand": product.QuantityOnHand,
				"requested":        input.Quantity,
			})
		}

	case enums.TransactionKindAddition:
		res := tx.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{
				"quantity_on_hand": gorm.Expr("quantity_on_hand + ?", input.Quantity),
				"updated_at":       now,
			})
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
		}
	}

	// Re-read inside the transaction for the post-update snapshot.
	if err := tx.WithContext(ctx).First(&product, "id = ?", product.ID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}

	txn := &models.StockTransaction{
		ID:          uuid.New(),
		GroupID:     groupID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Kind:        input.Kind,
		Quantity:    input.Quantity,
		UnitPrice:   price,
		LineTotal:   price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		OccurredAt:  occurredAt,
	}
	if err := e.ledger.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}

	message := fmt.Sprintf("Added %d x %s", input.Quantity, product.Name)
	if input.Kind == enums.TransactionKindSale {
		message = fmt.Sprintf("Sold %d x %s", input.Quantity, product.Name)
	}

	return &EventResult{
		Message:        message,
		Transaction:    txn,
		QuantityOnHand: product.QuantityOnHand,
		ReorderAlert:   product.QuantityOnHand <= product.ReorderLevel,
	}, nil
}

const groupTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func defaultGroupID(kind enums.TransactionKind) string {
	prefix := "STOCK-"
	if kind == enums.TransactionKindSale {
		prefix = "SALE-"
	}
	token := make([]byte, 6)
	for i := range token {
		token[i] = groupTokenAlphabet[rand.IntN(len(groupTokenAlphabet))]
	}
	return prefix + string(token)
}
