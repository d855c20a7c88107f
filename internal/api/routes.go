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

	// Endpoints
	mux.Handle("GET /api/v1/endpoints", chain(http.HandlerFunc(h.ListEndpoints)))
	mux.Handle("GET /api/v1/endpoints/{cid}", chain(http.HandlerFunc(h.GetEndpoint)))
	mux.Handle("POST /api/v1/endpoints/{cid}/connect", chain(http.HandlerFunc(h.ConnectEndpoint)))
	mux.Handle("POST /api/v1/endpoints/{cid}/close", chain(http.HandlerFunc(h.CloseEndpoint)))

	// Bindings
	mux.Handle("POST /api/v1/bindings/{name}/connect", chain(http.HandlerFunc(h.ConnectBinding)))
}
