package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(next, 1, 2)

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/payment", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	// Burst of 2 is allowed, the third request is rejected.
	require.Equal(t, http.StatusOK, do("198.51.100.10"))
	require.Equal(t, http.StatusOK, do("198.51.100.10"))
	require.Equal(t, http.StatusTooManyRequests, do("198.51.100.10"))

	// A different IP has its own bucket.
	require.Equal(t, http.StatusOK, do("198.51.100.11"))
}
