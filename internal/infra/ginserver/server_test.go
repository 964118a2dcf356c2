package ginserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

func newTestServer(checks map[string]HealthChecker, routes func(*gin.Engine)) *Server {
	b := NewServerBuilder("glassgov", 8080).WithLogger(infralogger.NewNop()).WithRoutes(routes)
	for name, c := range checks {
		b.WithHealthCheck(name, c)
	}
	return b.Build()
}

func TestHealth_Healthy(t *testing.T) {
	srv := newTestServer(nil, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, HealthStatusHealthy, resp.Status)
	assert.Equal(t, "glassgov", resp.Service)
}

func TestHealth_DegradedAndUnhealthy(t *testing.T) {
	failing := func() error { return errors.New("down") }

	srv := newTestServer(map[string]HealthChecker{
		"redis": PingChecker(failing, HealthStatusDegraded),
	}, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"degraded"`)

	srv = newTestServer(map[string]HealthChecker{
		"database": PingChecker(failing, HealthStatusUnhealthy),
	}, nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(nil, func(r *gin.Engine) {
		r.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })
	})

	req := httptest.NewRequest(http.MethodGet, "/echo", http.NoBody)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := newTestServer(nil, func(r *gin.Engine) {
		r.GET("/boom", func(*gin.Context) { panic("boom") })
	})
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/health", http.NoBody)
	req.Header.Set("Origin", "https://glassgov.example")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
