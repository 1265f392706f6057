package app

import (
	"net/http"

	"github.com/btcrunway/btcrunway/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Projection
	r.HandleFunc("/api/projection", deps.ProjectionHandler.Project).Methods(http.MethodPost)

	// Price history
	r.HandleFunc("/api/price-history", deps.PriceHistoryHandler.ListHistory).Methods(http.MethodGet)

	update := r.Path("/api/price-history/update").Subrouter()
	update.Use(CorsMiddleware(cfg.Cors, http.MethodPost))
	update.Methods(http.MethodPost, http.MethodOptions).HandlerFunc(deps.PriceHistoryHandler.UpdatePrice)
}
