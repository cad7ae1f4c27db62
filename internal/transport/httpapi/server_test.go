package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/common/metrics"
	"business-assistant/internal/gateway"
	"business-assistant/internal/intent"
	"business-assistant/internal/models"
	"business-assistant/internal/orchestrator"
	"business-assistant/internal/protocol"
	"business-assistant/internal/store/snapshot"
	"business-assistant/internal/timeparse"
)

// ==========================
// Test Helper Functions
// ==========================

var refNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, checks map[string]Checker) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	log := logger.NewTestLogger(t)
	clock := func() time.Time { return refNow }
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	data := snapshot.FromData(snapshot.Data{
		Customers: []models.Customer{{ID: "c1", Name: "Ana", Email: "ana@acme.test", CreatedAt: refNow}},
		Sales: []models.Sale{
			{ID: "s1", Quantity: 1, Total: 40, PaymentMethod: "card", Date: refNow.AddDate(0, 0, -1)},
		},
	})
	gw := gateway.New(nil, data, log, gateway.WithClock(clock), gateway.WithMetrics(m))
	cat := catalog.New()
	d := protocol.NewDispatcher(cat, gw, log, protocol.WithMetrics(m))
	orch := orchestrator.New(protocol.NewClient(d), cat, log, orchestrator.WithClock(clock), orchestrator.WithMetrics(m))
	a := orchestrator.NewAssistant(intent.NewDefaultClassifier(), timeparse.New(timeparse.WithClock(clock)), orch, log)

	srv := New(d, a, log, Options{RequestTimeout: 5 * time.Second, Gatherer: reg, Checks: checks})
	return srv.Handler(), reg
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ==========================
// /rpc Tests
// ==========================

func TestRPC_ToolsCall(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := post(t, h, "/rpc", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"analyze_sales","arguments":{"period":"week"}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ID     int               `json:"id"`
		Result models.DataAnswer `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, models.SourceSecondary, resp.Result.Source)
	require.NotNil(t, resp.Result.Total)
	assert.Equal(t, 1, *resp.Result.Total)
}

func TestRPC_ErrorEnvelope(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := post(t, h, "/rpc", `{"jsonrpc":"2.0","id":"x","method":"tools/call","params":{"name":"delete_all"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"x","error":{"code":-32602,"message":"Unknown tool: delete_all"}}`, rec.Body.String())
}

func TestRPC_Notification(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := post(t, h, "/rpc", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRPC_Malformed(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := post(t, h, "/rpc", `not json`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":-32602`)
}

// ==========================
// /ask Tests
// ==========================

func TestAsk(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := post(t, h, "/ask", `{"query":"how were sales this week?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var answer struct {
		Intent     string                `json:"intent"`
		TimeWindow *timeparse.TimeWindow `json:"timeWindow"`
		Data       struct {
			Sales *models.DataAnswer `json:"sales"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, string(intent.SalesAnalysis), answer.Intent)
	require.NotNil(t, answer.TimeWindow)
	assert.Equal(t, timeparse.PeriodWeek, answer.TimeWindow.Period)
	require.NotNil(t, answer.Data.Sales)
	assert.Equal(t, models.SourceSecondary, answer.Data.Sales.Source)
}

func TestAsk_BadRequests(t *testing.T) {
	h, _ := newTestServer(t, nil)

	assert.Equal(t, http.StatusBadRequest, post(t, h, "/ask", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/ask", `{"query":"   "}`).Code)
}

// ==========================
// /healthz and /metrics Tests
// ==========================

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, map[string]Checker{
		"snapshot": func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"snapshot":"ok","postgres":"connection refused"}}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, nil)
	post(t, h, "/rpc", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rpc_requests_total{method="tools/list",outcome="ok"} 1`)
}
