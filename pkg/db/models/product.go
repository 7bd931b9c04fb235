package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry plus its stock snapshot. QuantityOnHand and
// UnitsSold are derived state: baseline plus the replayed stock transaction
// ledger must always reproduce them.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Category         string          `gorm:"column:category;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	QuantityOnHand   int             `gorm:"column:quantity_on_hand;not null;default:0"`
	ReorderLevel     int             `gorm:"column:reorder_level;not null;default:0"`
	UnitsSold        int             `gorm:"column:units_sold;not null;default:0"`
	BaselineQuantity int             `gorm:"column:baseline_quantity;not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
