package controllers

import (
	"net/http"

	"github.com/martsys/inventory-backend/api/responses"
	"github.com/martsys/inventory-backend/api/validators"
	settingssvc "github.com/martsys/inventory-backend/internal/settings"
	"github.com/martsys/inventory-backend/pkg/logger"
)

func GetSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setting, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

type updateSettingsRequest struct {
	MartName  *string `json:"mart_name,omitempty"`
	AdminName *string `json:"admin_name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Contact   *string `json:"contact,omitempty"`
	Currency  *string `json:"currency,omitempty"`
	AccessPin *string `json:"access_pin,omitempty"`
}

func UpdateSettings(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setting, err := svc.Update(r.Context(), settingssvc.UpdateInput{
			MartName:  payload.MartName,
			AdminName: payload.AdminName,
			Address:   payload.Address,
			Contact:   payload.Contact,
			Currency:  payload.Currency,
			AccessPin: payload.AccessPin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, setting)
	}
}
