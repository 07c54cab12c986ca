package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]*model.TokenClaims

func (f fakeTokens) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "bad id with spaces")
	w = serve(r, req)
	assert.NotEqual(t, "bad id with spaces", w.Header().Get(HeaderXRequestID))
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestAuthenticate(t *testing.T) {
	tokens := fakeTokens{
		"admin":   {UserID: "u1", Role: model.RoleAdmin},
		"patient": {UserID: "u2", Role: model.RolePatient, PatientID: "p1"},
	}
	m := NewAuthMiddleware(tokens)

	r := gin.New()
	api := r.Group("/", m.Authenticate())
	api.GET("/any", func(c *gin.Context) {
		claims, ok := Claims(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})
	api.GET("/admin", m.RequireRole(model.RoleAdmin), ok)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/any", "", http.StatusUnauthorized},
		{"wrong scheme", "/any", "Basic admin", http.StatusUnauthorized},
		{"unknown token", "/any", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/any", "Bearer admin", http.StatusOK},
		{"admin route as admin", "/admin", "Bearer admin", http.StatusOK},
		{"admin route as patient", "/admin", "Bearer patient", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.status, serve(r, req).Code)
		})
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.0001, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", ok)

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(4))
	r.POST("/", ok)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Nop()))
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"internal server error"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/", ok)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsAndHeaders(t *testing.T) {
	m := metrics.New("test")
	r := gin.New()
	r.Use(Metrics(m), SecureHeaders(), Logger(logger.Nop()))
	r.GET("/items/:id", ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/items/:id", "200")))

	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "unmatched", "404")))
}
