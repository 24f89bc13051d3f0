package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.ErrorLevel)

	dir, err := os.MkdirTemp("", "portfolio-test")
	if err != nil {
		panic(err)
	}
	if err := initDB(filepath.Join(dir, "test.db")); err != nil {
		panic(err)
	}
	initAdminToken()

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func testConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			StaticDir:   "./static",
			ImagesDir:   "./images",
			CORSOrigins: []string{"*"},
		},
		App: AppConfig{
			Environment: "development",
			Version:     "test",
			DBPath:      ":memory:",
		},
		Launch: LaunchConfig{
			EcosystemBin:     "./testdata/does-not-exist",
			CodeProcessorBin: "./testdata/also-missing",
			Cooldown:         time.Second,
		},
		Cache: CacheConfig{MaxEntries: 8, TTL: time.Minute},
		Rate:  RateConfig{Limit: 100, Window: time.Minute},
	}
}

func newTestRouter(t *testing.T, cfg *Config) *gin.Engine {
	t.Helper()
	return buildRouter(cfg, loadProjects())
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("DNT", "1") // keep visitor tracking out of tests
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doRequest(r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "portfolio-site", body["service"])
	assert.Equal(t, "test", body["version"])
}

func TestIndexRendersProjects(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doRequest(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Ecosystem Simulator")
	assert.Contains(t, w.Body.String(), "/api/launch-ecosystem")
}

func TestUnknownRouteReturnsHTMLNotFound(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doRequest(r, http.MethodGet, "/no-such-page", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "404")
}

func TestUnknownAPIRouteReturnsJSONNotFound(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doRequest(r, http.MethodGet, "/api/no-such-endpoint", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not_found", body["kind"])
}

func TestLaunchEndpointMissingBinary(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doRequest(r, http.MethodPost, "/api/launch-ecosystem", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body LaunchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Empty(t, body.LaunchID)
}

func TestFragmentEndpointsServedAndCached(t *testing.T) {
	r := newTestRouter(t, testConfig())

	first := doRequest(r, http.MethodGet, "/work-content", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := doRequest(r, http.MethodGet, "/work-content", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestAPIRateLimitEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Limit = 3
	r := newTestRouter(t, cfg)

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodGet, "/api/health", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := doRequest(r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAdminDashboardRequiresAuth(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := doRequest(r, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}
