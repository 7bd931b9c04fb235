package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martsys/inventory-backend/api/responses"
	"github.com/martsys/inventory-backend/api/validators"
	"github.com/martsys/inventory-backend/internal/reconcile"
	"github.com/martsys/inventory-backend/pkg/enums"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
	"github.com/martsys/inventory-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice *string `json:"unit_price,omitempty"`
}

type checkoutRequest struct {
	GroupID    string                `json:"group_id,omitempty"`
	OccurredAt *time.Time            `json:"occurred_at,omitempty"`
	Lines      []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r checkoutRequest) toLines() ([]reconcile.BatchLine, error) {
	lines := make([]reconcile.BatchLine, 0, len(r.Lines))
	for _, raw := range r.Lines {
		productID, err := uuid.Parse(strings.TrimSpace(raw.ProductID))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		line := reconcile.BatchLine{
			ProductID:  productID,
			Kind:       enums.TransactionKindSale,
			Quantity:   raw.Quantity,
			OccurredAt: r.OccurredAt,
		}
		if raw.UnitPrice != nil {
			price, parseErr := decimal.NewFromString(strings.TrimSpace(*raw.UnitPrice))
			if parseErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid unit price")
			}
			line.UnitPriceOverride = &price
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Checkout records a multi-line sale atomically. Any line that cannot be
// fulfilled rolls back the whole receipt.
func Checkout(engine reconcile.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := payload.toLines()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := engine.RecordBatch(r.Context(), strings.TrimSpace(payload.GroupID), lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
