package app

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/ntpu-course-master/internal/ctxutil"
)

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.RequestID(c.Request.Context()))
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Body.String())
		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("falls back to correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set("X-Correlation-ID", "corr-9")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "corr-9", w.Body.String())
	})

	t.Run("generates uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

		_, err := uuid.Parse(w.Body.String())
		require.NoError(t, err)
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})
}

func TestOperationMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/op", operation("search"), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.Operation(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/op", nil))
	assert.Equal(t, "search", w.Body.String())
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		serveWeb bool
		wantCSP  string
	}{
		{"api only", false, cspAPI},
		{"with front end", true, cspWeb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(securityHeadersMiddleware(tt.serveWeb))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.wantCSP, w.Header().Get("Content-Security-Policy"))
		})
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, testConfig(), catalogCSV)

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:5500")
		w := httptest.NewRecorder()
		a.handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/courses/recommend", nil)
		req.Header.Set("Origin", "http://localhost:5500")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		a.handler().ServeHTTP(w, req)

		assert.Less(t, w.Code, 300)
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestCORSRestrictedOrigins(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.CORSOrigins = []string{"https://course.example.edu"}
	a := newTestApp(t, cfg, "")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	a.handler().ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://course.example.edu")
	w = httptest.NewRecorder()
	a.handler().ServeHTTP(w, req)

	assert.Equal(t, "https://course.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAuthMiddleware_NoPasswordBypass(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware("prometheus", ""), func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "metrics", w.Body.String())
}

func TestMetricsAuthMiddleware_Credentials(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware("prometheus", "secret123"), func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})

	tests := []struct {
		name     string
		auth     string
		wantCode int
	}{
		{"valid", basicAuth("prometheus", "secret123"), http.StatusOK},
		{"wrong username", basicAuth("wronguser", "secret123"), http.StatusUnauthorized},
		{"wrong password", basicAuth("prometheus", "nope"), http.StatusUnauthorized},
		{"empty credentials", basicAuth("", ""), http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="metrics"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MetricsPassword = "secret123"
	a := newTestApp(t, cfg, catalogCSV)

	w := serve(a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", basicAuth("prometheus", "secret123"))
	w = httptest.NewRecorder()
	a.handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ntpu_snapshot_records 4")
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
