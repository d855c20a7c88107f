package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/rmqlink/internal/broker"
	"github.com/shaiso/rmqlink/internal/dsl"
	"github.com/shaiso/rmqlink/internal/mq"
	"github.com/shaiso/rmqlink/internal/mq/mqtest"
	"github.com/shaiso/rmqlink/internal/telemetry"
)

func newTestServer(t *testing.T, client *mqtest.Client) (*http.ServeMux, *broker.Manager) {
	t.Helper()

	m := broker.New(broker.Config{
		Client:  client,
		Options: dsl.DefaultOptions(),
		Logger:  telemetry.Discard(),
	})
	require.NoError(t, m.Load([]string{
		"[rmq1] uri=amqp://guest:guest@a:5672/vh; exchange=events; mandatory",
		"[rmq2] uri=amqp://b/",
	}))
	require.NoError(t, m.Bind(map[string]string{
		"primary":   "rmq1",
		"by_query":  "$query.cid",
		"by_header": "$header.X-Connection-Id",
	}))

	mux := http.NewServeMux()
	NewHandler(Config{Manager: m, Logger: telemetry.Discard()}).RegisterRoutes(mux)
	return mux, m
}

func do(t *testing.T, mux http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) mq.EndpointInfo {
	t.Helper()
	var resp struct {
		Data mq.EndpointInfo `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestListEndpoints(t *testing.T) {
	mux, _ := newTestServer(t, mqtest.NewClient())

	rec := do(t, mux, http.MethodGet, "/api/v1/endpoints", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Data  []mq.EndpointInfo `json:"data"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "rmq1", resp.Data[0].ID)
	assert.Equal(t, "events", resp.Data[0].Exchange)
	assert.Equal(t, "mandatory", resp.Data[0].Flags)
	assert.Equal(t, "DISCONNECTED", resp.Data[1].State)
}

func TestGetEndpoint(t *testing.T) {
	mux, _ := newTestServer(t, mqtest.NewClient())

	rec := do(t, mux, http.MethodGet, "/api/v1/endpoints/rmq1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeData(t, rec)
	assert.Equal(t, "rmq1", info.ID)
	assert.Equal(t, "a", info.Host)
	assert.Equal(t, "vh", info.VHost)

	rec = do(t, mux, http.MethodGet, "/api/v1/endpoints/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestConnectEndpoint(t *testing.T) {
	client := mqtest.NewClient()
	mux, m := newTestServer(t, client)

	rec := do(t, mux, http.MethodPost, "/api/v1/endpoints/rmq2/connect", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeData(t, rec)
	assert.Equal(t, "READY", info.State)
	assert.NotEmpty(t, info.SessionID)
	assert.Equal(t, mq.StateReady, m.Find("rmq2").State())

	// Повторный connect не трогает брокер.
	before := len(client.Calls())
	rec = do(t, mux, http.MethodPost, "/api/v1/endpoints/rmq2/connect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, client.Calls(), before)
}

func TestConnectEndpoint_Failure(t *testing.T) {
	client := mqtest.NewClient()
	client.SetOutcome(mqtest.StepLogin, mq.ServerException(mq.MethodConnectionClose, 403, "ACCESS_REFUSED"))
	mux, m := newTestServer(t, client)

	rec := do(t, mux, http.MethodPost, "/api/v1/endpoints/rmq1/connect", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	detail := decodeError(t, rec)
	assert.Equal(t, ErrCodeConnectFailed, detail.Code)
	require.NotNil(t, detail.Diagnosis)
	assert.Equal(t, "connection_closed", detail.Diagnosis.Reason)
	assert.Equal(t, 403, detail.Diagnosis.Code)
	assert.Equal(t, "ACCESS_REFUSED", detail.Diagnosis.Text)
	assert.Equal(t, mq.StateDisconnected, m.Find("rmq1").State())
}

func TestCloseEndpoint(t *testing.T) {
	client := mqtest.NewClient()
	mux, m := newTestServer(t, client)

	_, err := m.Connect(t.Context(), "rmq1")
	require.NoError(t, err)

	rec := do(t, mux, http.MethodPost, "/api/v1/endpoints/rmq1/close", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DISCONNECTED", decodeData(t, rec).State)
	assert.Equal(t, 1, client.Count(mqtest.StepCloseChannel))

	rec = do(t, mux, http.MethodPost, "/api/v1/endpoints/nope/close", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConnectBinding(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header http.Header
		status int
		cid    string
	}{
		{name: "literal", target: "/api/v1/bindings/primary/connect", status: http.StatusOK, cid: "rmq1"},
		{name: "query", target: "/api/v1/bindings/by_query/connect?cid=rmq2", status: http.StatusOK, cid: "rmq2"},
		{
			name:   "header",
			target: "/api/v1/bindings/by_header/connect",
			header: http.Header{"X-Connection-Id": {"rmq1"}},
			status: http.StatusOK,
			cid:    "rmq1",
		},
		{name: "query unknown id", target: "/api/v1/bindings/by_query/connect?cid=rmq9", status: http.StatusNotFound},
		{name: "query missing", target: "/api/v1/bindings/by_query/connect", status: http.StatusNotFound},
		{name: "unknown binding", target: "/api/v1/bindings/nope/connect", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, _ := newTestServer(t, mqtest.NewClient())

			rec := do(t, mux, http.MethodPost, tt.target, tt.header)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				info := decodeData(t, rec)
				assert.Equal(t, tt.cid, info.ID)
				assert.Equal(t, "READY", info.State)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(telemetry.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrCodeInternalError, decodeError(t, rec).Code)
}

func TestLogging_CapturesStatus(t *testing.T) {
	var status int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, telemetry.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if rw, ok := w.(*responseWriter); ok {
				status = rw.status
			}
		})
	}

	handler := Chain(Logging(telemetry.Discard()), capture)(inner)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, status)
}
