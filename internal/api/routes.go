package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Rotations
	mux.Handle("GET /api/v1/rotations", chain(http.HandlerFunc(h.ListRotations)))
	mux.Handle("POST /api/v1/rotations", chain(http.HandlerFunc(h.CreateRotation)))
	mux.Handle("GET /api/v1/rotations/{name}", chain(http.HandlerFunc(h.GetRotation)))
	mux.Handle("PUT /api/v1/rotations/{name}", chain(http.HandlerFunc(h.UpdateRotation)))
	mux.Handle("DELETE /api/v1/rotations/{name}", chain(http.HandlerFunc(h.DeleteRotation)))

	// Units
	mux.Handle("POST /api/v1/rotations/{name}/plugins", chain(http.HandlerFunc(h.CreateUnit)))
	mux.Handle("PUT /api/v1/rotations/{name}/plugins/{plugin_id}/{instance}", chain(http.HandlerFunc(h.UpdateUnit)))
	mux.Handle("DELETE /api/v1/rotations/{name}/plugins/{plugin_id}/{instance}", chain(http.HandlerFunc(h.DeleteUnit)))
	mux.Handle("POST /api/v1/rotations/{name}/plugins/{plugin_id}/{instance}/refresh", chain(http.HandlerFunc(h.RefreshUnit)))

	// Status
	mux.Handle("GET /api/v1/status/active", chain(http.HandlerFunc(h.GetActive)))
	mux.Handle("GET /api/v1/refresh-log", chain(http.HandlerFunc(h.ListRefreshLog)))
}
