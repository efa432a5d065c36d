package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/mocks"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.4.0", "9c2e1f7", "2026-03-02T08:30:00Z")

	assert.Equal(t, BuildInfo{
		Version:   "1.4.0",
		Commit:    "9c2e1f7",
		BuildTime: "2026-03-02T08:30:00Z",
		GoVersion: runtime.Version(),
	}, bi)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/live", nil)

	handler.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

// checker builds a named health checker mock returning err.
func checker(t *testing.T, name string, err error) *mocks.MockHealthChecker {
	t.Helper()

	m := mocks.NewMockHealthChecker(t)
	m.EXPECT().Name().Return(name).Maybe()
	m.EXPECT().Check(mock.Anything).Return(err).Maybe()

	return m
}

// optional marks a checker as non-critical.
type optional struct {
	*mocks.MockHealthChecker
}

func (optional) Optional() bool { return true }

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name           string
		checkers       func(t *testing.T) []ports.HealthChecker
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "all checks healthy",
			checkers: func(t *testing.T) []ports.HealthChecker {
				return []ports.HealthChecker{
					checker(t, "storage", nil),
					optional{checker(t, "quote-remote", nil)},
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
		{
			name: "storage unhealthy",
			checkers: func(t *testing.T) []ports.HealthChecker {
				return []ports.HealthChecker{
					checker(t, "storage", errors.New("database is locked")),
					optional{checker(t, "quote-remote", nil)},
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"status":"unhealthy"`,
		},
		{
			name: "remote down is degraded but ready",
			checkers: func(t *testing.T) []ports.HealthChecker {
				return []ports.HealthChecker{
					checker(t, "storage", nil),
					optional{checker(t, "quote-remote", errors.New("circuit breaker is open"))},
				}
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"degraded"`,
		},
		{
			name:           "no checks registered",
			checkers:       func(*testing.T) []ports.HealthChecker { return nil },
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := ports.NewHealthRegistry()
			for _, c := range tt.checkers(t) {
				require.NoError(t, registry.Register(c))
			}

			handler := NewHealthHandler(registry, BuildInfo{})

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

			handler.Readiness(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestHealthHandler_ReadinessWithoutRegistry(t *testing.T) {
	handler := NewHealthHandler(nil, BuildInfo{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

	handler.Readiness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthHandler_ReadinessReportsOptionalChecks(t *testing.T) {
	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(optional{checker(t, "quote-remote", errors.New("circuit breaker open until 2026-03-02T08:31:00Z"))}))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

	NewHealthHandler(registry, BuildInfo{}).Readiness(c)

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp.Checks, "quote-remote")
	assert.True(t, resp.Checks["quote-remote"].Optional)
	assert.Contains(t, resp.Checks["quote-remote"].Message, "circuit breaker open")
	assert.False(t, resp.CheckedAt.IsZero())
}

func TestHealthHandler_BuildInfoHandler(t *testing.T) {
	buildInfo := BuildInfo{
		Version:   "1.4.0",
		Commit:    "9c2e1f7",
		BuildTime: "2026-03-02T08:30:00Z",
		GoVersion: "go1.25.7",
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/build", nil)

	NewHealthHandler(ports.NewHealthRegistry(), buildInfo).BuildInfoHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, buildInfo, resp)
}

func TestMetricsHandler(t *testing.T) {
	tests := []struct {
		name        string
		accept      string
		contentType string
	}{
		{"text exposition by default", "", "text/plain"},
		{"openmetrics on request", "application/openmetrics-text; version=1.0.0", "application/openmetrics-text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/-/metrics", nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}

			MetricsHandler().ServeHTTP(w, r)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
		})
	}
}

func TestHealthHandler_RegisterHealthRoutes(t *testing.T) {
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{Version: "1.4.0"})

	router := gin.New()
	handler.RegisterHealthRoutes(router.Group("/-"))

	got := make([]string, 0, 4)
	for _, r := range router.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}

	assert.ElementsMatch(t, []string{"GET /-/live", "GET /-/ready", "GET /-/build", "GET /-/metrics"}, got)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/build", nil))
	assert.Contains(t, w.Body.String(), `"version":"1.4.0"`)
}
