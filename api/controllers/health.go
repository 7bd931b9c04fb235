package controllers

import (
	"net/http"

	"github.com/martsys/inventory-backend/api/responses"
	"github.com/martsys/inventory-backend/pkg/config"
	"github.com/martsys/inventory-backend/pkg/db"
	pkgerrors "github.com/martsys/inventory-backend/pkg/errors"
	"github.com/martsys/inventory-backend/pkg/logger"
	pkgredis "github.com/martsys/inventory-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Martsys-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the database answers. Redis is
// optional infrastructure, so a failed redis ping degrades the payload but
// does not fail the check.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Martsys-Env", cfg.App.Env)

		checks := map[string]string{"database": "ok"}
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "database not wired"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
			return
		}

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				if logg != nil {
					logg.Warn(r.Context(), "redis ping failed during readiness check")
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
