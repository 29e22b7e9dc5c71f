package controllers

import (
	"net/http"

	"github.com/dispatchline/delivery-console/api/responses"
	"github.com/dispatchline/delivery-console/pkg/config"
	"github.com/dispatchline/delivery-console/pkg/db"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/types"
)

const envHeader = "X-Delivery-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, "live", types.Member("status", "live"))
	}
}

// HealthReady reports ready only while the database answers a ping.
func HealthReady(cfg *config.Config, dbP db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}
		responses.WriteSuccess(w, "ready", types.Member("status", "ready"))
	}
}
