package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martsys/inventory-backend/pkg/enums"
)

// StockTransaction is an immutable ledger entry for a single stock movement.
// ProductName and UnitPrice are captured at write time so entries stay
// meaningful after the product is renamed, repriced, or removed.
type StockTransaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	GroupID     string                `gorm:"column:group_id;not null;index"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName string                `gorm:"column:product_name;not null"`
	Kind        enums.TransactionKind `gorm:"column:kind;type:transaction_kind_enum;not null"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal       `gorm:"column:line_total;type:numeric(12,2);not null"`
	OccurredAt  time.Time             `gorm:"column:occurred_at;not null;index"`
}
