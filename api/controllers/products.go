package controllers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/martsys/inventory-backend/api/responses"
	"github.com/martsys/inventory-backend/api/validators"
	catalogsvc "github.com/martsys/inventory-backend/internal/catalog"
	"github.com/martsys/inventory-backend/internal/reconcile"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
	"github.com/martsys/inventory-backend/pkg/logger"
)

func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Search(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type createProductRequest struct {
	Name            string `json:"name" validate:"required"`
	Category        string `json:"category" validate:"required"`
	UnitPrice       string `json:"unit_price" validate:"required"`
	InitialQuantity int    `json:"initial_quantity" validate:"omitempty,min=0"`
	ReorderLevel    int    `json:"reorder_level" validate:"omitempty,min=0"`
}

func CreateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(payload.UnitPrice))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price"))
			return
		}

		product, err := svc.Create(r.Context(), catalogsvc.CreateProductInput{
			Name:            payload.Name,
			Category:        payload.Category,
			UnitPrice:       price,
			InitialQuantity: payload.InitialQuantity,
			ReorderLevel:    payload.ReorderLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func GetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type updateProductRequest struct {
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	UnitPrice    *string `json:"unit_price,omitempty"`
	ReorderLevel *int    `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
}

func UpdateProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalogsvc.UpdateProductInput{
			Name:         payload.Name,
			Category:     payload.Category,
			ReorderLevel: payload.ReorderLevel,
		}
		if payload.UnitPrice != nil {
			price, parseErr := decimal.NewFromString(strings.TrimSpace(*payload.UnitPrice))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid unit price"))
				return
			}
			input.UnitPrice = &price
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id.String()})
	}
}

// LookupProduct resolves a free-form term: a UUID matches by id, anything
// else by exact product name.
func LookupProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.FindByIDOrName(r.Context(), r.URL.Query().Get("term"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductSnapshot(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snapshot, err := svc.Snapshot(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// RebuildProduct replays the ledger for one product. With repair=true a
// drifted snapshot is overwritten with the replayed values.
func RebuildProduct(engine reconcile.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		repair := false
		if raw := r.URL.Query().Get("repair"); raw != "" {
			repair, err = strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid repair flag"))
				return
			}
		}

		report, err := engine.RebuildFromLedger(r.Context(), id, repair)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ExportProductsCSV streams the catalog as a spreadsheet-friendly download.
func ExportProductsCSV(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Search(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)

		writer := csv.NewWriter(w)
		header := []string{"id", "name", "category", "unit_price", "quantity_on_hand", "reorder_level", "units_sold"}
		if err := writer.Write(header); err != nil {
			logExportError(r, logg, err)
			return
		}
		for _, p := range rows {
			record := []string{
				p.ID.String(),
				p.Name,
				p.Category,
				p.UnitPrice.StringFixed(2),
				strconv.Itoa(p.QuantityOnHand),
				strconv.Itoa(p.ReorderLevel),
				strconv.Itoa(p.UnitsSold),
			}
			if err := writer.Write(record); err != nil {
				logExportError(r, logg, err)
				return
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			logExportError(r, logg, err)
		}
	}
}

func logExportError(r *http.Request, logg *logger.Logger, err error) {
	if logg != nil {
		logg.Error(r.Context(), "write csv export", err)
	}
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}
