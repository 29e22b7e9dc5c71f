package controllers

import (
	"net/http"

	"github.com/dispatchline/delivery-console/api/responses"
	"github.com/dispatchline/delivery-console/pkg/config"
	"github.com/dispatchline/delivery-console/pkg/types"
)

// Welcome answers the bare root with the configured dashboard origin.
func Welcome(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, "Welcome to the API", types.Member("clientUri", cfg.CORS.ClientOrigin))
	}
}
