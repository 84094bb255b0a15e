package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"crypto-resilience-service/internal/infrastructure/logging"
)

func TestRequestTracingMiddleware(t *testing.T) {
	var seenID string
	handler := RequestTracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("genera un ID nuevo", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/crypto", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, rec.Header().Get(RequestIDHeader), seenID)
	})

	t.Run("reusa el ID del llamador", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/crypto", nil)
		req.Header.Set(RequestIDHeader, "client-abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "client-abc-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "client-abc-123", seenID)
	})

	t.Run("descarta IDs inválidos", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "has spaces")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.NotEqual(t, "has spaces", rec.Header().Get(RequestIDHeader))
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr sin puerto", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"primer salto de X-Forwarded-For", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.2"}, "10.0.0.1:5555", "1.2.3.4"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "5.6.7.8"}, "10.0.0.1:5555", "5.6.7.8"},
		{"remote addr sin formato host:port", nil, "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/crypto", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/crypto", nil))
	assert.True(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSuspicious(t *testing.T) {
	tests := []struct {
		path  string
		query string
		want  bool
	}{
		{"/api/crypto/BTCUSDT", "", false},
		{"/api/crypto/../etc/passwd", "", true},
		{"/api/crypto", "q=1%20UNION%20SELECT%20*", true},
		{"/api/crypto", "q=%3Cscript%3E", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"?"+tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = tt.path
			req.URL.RawQuery = tt.query
			_, got := suspicious(req)
			assert.Equal(t, tt.want, got)
		})
	}
}
