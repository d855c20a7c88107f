package api

import (
	"net/http"

	"github.com/shaiso/rmqlink/internal/resolver"
	"github.com/shaiso/rmqlink/internal/telemetry"
)

// pathReference — ссылка на endpoint из пути запроса.
var pathReference = resolver.Reference{Expr: resolver.DynamicPrefix + sourcePath + ".cid"}

// ListEndpoints возвращает все endpoint'ы.
// GET /api/v1/endpoints
func (h *Handler) ListEndpoints(w http.ResponseWriter, _ *http.Request) {
	result := EndpointsFromMQ(h.manager.Endpoints())
	List(w, result, len(result))
}

// GetEndpoint возвращает endpoint по ID.
// GET /api/v1/endpoints/{cid}
func (h *Handler) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, err := h.manager.Resolve(r.Context(), pathReference, NewRequestEvaluator(r))
	if HandleEndpointError(w, h.logger, err) {
		return
	}

	Success(w, ep.Info())
}

// ConnectEndpoint подключает endpoint. Для READY endpoint — no-op.
// POST /api/v1/endpoints/{cid}/connect
func (h *Handler) ConnectEndpoint(w http.ResponseWriter, r *http.Request) {
	h.connect(w, r, pathReference)
}

// CloseEndpoint закрывает соединение endpoint.
// POST /api/v1/endpoints/{cid}/close
func (h *Handler) CloseEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, err := h.manager.Close(r.PathValue("cid"))
	if HandleEndpointError(w, h.logger, err) {
		return
	}

	telemetry.FromContext(r.Context()).Info("endpoint closed", "connection_id", ep.ID)
	Success(w, ep.Info())
}

// ConnectBinding разрешает именованную ссылку по запросу и подключает endpoint.
// POST /api/v1/bindings/{name}/connect
func (h *Handler) ConnectBinding(w http.ResponseWriter, r *http.Request) {
	ref, err := h.manager.Binding(r.PathValue("name"))
	if HandleEndpointError(w, h.logger, err) {
		return
	}

	h.connect(w, r, ref)
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request, ref resolver.Reference) {
	ep, err := h.manager.Resolve(r.Context(), ref, NewRequestEvaluator(r))
	if HandleEndpointError(w, h.logger, err) {
		return
	}

	if err := h.manager.ConnectEndpoint(r.Context(), ep); HandleEndpointError(w, h.logger, err) {
		return
	}

	Success(w, ep.Info())
}
