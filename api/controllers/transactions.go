package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/martsys/inventory-backend/api/responses"
	"github.com/martsys/inventory-backend/api/validators"
	ledgersvc "github.com/martsys/inventory-backend/internal/ledger"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
	"github.com/martsys/inventory-backend/pkg/logger"
)

// ListTransactions scans the ledger with optional product, group, and time
// window filters. Entries come back in occurrence order.
func ListTransactions(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseTransactionFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Scan(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func parseTransactionFilter(r *http.Request) (ledgersvc.Filter, error) {
	filter := ledgersvc.Filter{
		GroupID: strings.TrimSpace(r.URL.Query().Get("group_id")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("product_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ledgersvc.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		filter.ProductID = &id
	}

	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{
		{key: "from", dest: &filter.From},
		{key: "to", dest: &filter.To},
	} {
		raw := strings.TrimSpace(r.URL.Query().Get(bound.key))
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ledgersvc.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid time bound").WithDetails(map[string]any{"field": bound.key})
		}
		*bound.dest = &ts
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
	if err != nil {
		return ledgersvc.Filter{}, err
	}
	filter.Limit = limit

	return filter, nil
}
