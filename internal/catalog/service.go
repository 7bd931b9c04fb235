package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/martsys/inventory-backend/pkg/db"
	"github.com/martsys/inventory-backend/pkg/db/models"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
)

// StockRecorder is the slice of the reconciliation engine the catalog needs:
// initial stock on a new product is recorded as an addition event so the
// ledger replay covers day one. The tx parameter lets the product insert and
// its initial stock commit as one transaction.
type StockRecorder interface {
	RecordAdditionIn(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error
}

// CreateProductInput captures the data for a new catalog entry.
type CreateProductInput struct {
	Name            string
	Category        string
	UnitPrice       decimal.Decimal
	InitialQuantity int
	ReorderLevel    int
}

// UpdateProductInput carries partial catalog updates. Stock fields are
// deliberately absent: quantity_on_hand and units_sold change only through
// the reconciliation engine.
type UpdateProductInput struct {
	Name         *string
	Category     *string
	UnitPrice    *decimal.Decimal
	ReorderLevel *int
}

// Snapshot is the point-in-time stock view for one product.
type Snapshot struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	QuantityOnHand int             `json:"quantity_on_hand"`
	UnitsSold      int             `json:"units_sold"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	ReorderAlert   bool            `json:"reorder_alert"`
}

// Service manages catalog entries.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Search(ctx context.Context, term string) ([]models.Product, error)
	FindByIDOrName(ctx context.Context, term string) (*models.Product, error)
	Snapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
}

type service struct {
	repo     Repository
	dbc      *db.Client
	recorder StockRecorder
}

// NewService wires a catalog service. The recorder may be nil, in which case
// products are created with zero stock and restocked separately.
func NewService(repo Repository, dbc *db.Client, recorder StockRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbc == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbc: dbc, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}
	if input.ReorderLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder level cannot be negative")
	}

	// The product starts empty; initial stock arrives as an addition event
	// so the snapshot stays derivable from baseline plus ledger.
	product := &models.Product{
		ID:               uuid.New(),
		Name:             name,
		Category:         strings.TrimSpace(input.Category),
		UnitPrice:        input.UnitPrice,
		QuantityOnHand:   0,
		ReorderLevel:     input.ReorderLevel,
		UnitsSold:        0,
		BaselineQuantity: 0,
	}
	err := s.dbc.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if input.InitialQuantity > 0 && s.recorder != nil {
			return s.recorder.RecordAdditionIn(ctx, tx, product.ID, input.InitialQuantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.InitialQuantity > 0 && s.recorder != nil {
		return s.Get(ctx, product.ID)
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		product.Category = category
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.ReorderLevel != nil {
		if *input.ReorderLevel < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reorder level cannot be negative")
		}
		product.ReorderLevel = *input.ReorderLevel
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Search(ctx context.Context, term string) ([]models.Product, error) {
	rows, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return rows, nil
}

// FindByIDOrName resolves free-form input: a UUID matches by id, anything
// else by exact name.
func (s *service) FindByIDOrName(ctx context.Context, term string) (*models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lookup term is required")
	}

	if id, err := uuid.Parse(term); err == nil {
		return s.Get(ctx, id)
	}

	product, err := s.repo.FindByName(ctx, term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", term))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product by name")
	}
	return product, nil
}

func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ProductID:      product.ID,
		Name:           product.Name,
		QuantityOnHand: product.QuantityOnHand,
		UnitsSold:      product.UnitsSold,
		UnitPrice:      product.UnitPrice,
		ReorderAlert:   product.QuantityOnHand <= product.ReorderLevel,
	}, nil
}
