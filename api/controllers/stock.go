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

type stockEventRequest struct {
	ProductID  string     `json:"product_id" validate:"required"`
	Kind       string     `json:"kind" validate:"required"`
	Quantity   int        `json:"quantity" validate:"required,min=1"`
	UnitPrice  *string    `json:"unit_price,omitempty"`
	GroupID    string     `json:"group_id,omitempty"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

func (r stockEventRequest) toInput() (reconcile.RecordEventInput, error) {
	productID, err := uuid.Parse(strings.TrimSpace(r.ProductID))
	if err != nil {
		return reconcile.RecordEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	kind, err := enums.ParseTransactionKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return reconcile.RecordEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction kind")
	}

	input := reconcile.RecordEventInput{
		ProductID:  productID,
		Kind:       kind,
		Quantity:   r.Quantity,
		GroupID:    strings.TrimSpace(r.GroupID),
		OccurredAt: r.OccurredAt,
	}
	if r.UnitPrice != nil {
		price, parseErr := decimal.NewFromString(strings.TrimSpace(*r.UnitPrice))
		if parseErr != nil {
			return reconcile.RecordEventInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid unit price")
		}
		input.UnitPriceOverride = &price
	}
	return input, nil
}

// RecordStockEvent applies a single addition or sale through the
// reconciliation engine.
func RecordStockEvent(engine reconcile.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload stockEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := engine.RecordEvent(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
