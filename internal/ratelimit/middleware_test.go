package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"deployverify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMiddleware_AllowedRequest(t *testing.T) {
	handler := Middleware(newTestLimiter(t, 60, 5), nil)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestMiddleware_DeniedRequest(t *testing.T) {
	handler := Middleware(newTestLimiter(t, 60, 1), nil)(okHandler)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil))
	require.Equal(t, http.StatusOK, first.Code)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.ErrorCodeRateLimited, resp.Code)
}

func TestMiddleware_CustomKey(t *testing.T) {
	byHeader := func(r *http.Request) string { return r.Header.Get("X-Caller") }
	handler := Middleware(newTestLimiter(t, 60, 1), byHeader)(okHandler)

	for _, caller := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Caller", caller)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "caller %s", caller)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{name: "remote addr without port", remote: "192.0.2.1:1234", expected: "192.0.2.1"},
		{name: "remote addr unparseable", remote: "pipe", expected: "pipe"},
		{name: "x-forwarded-for first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remote: "10.0.0.1:80", expected: "203.0.113.5"},
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remote: "10.0.0.1:80", expected: "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIP(req))
		})
	}
}
