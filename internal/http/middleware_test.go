package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{name: "single forwarded IP", xff: "192.168.1.1", expected: "192.168.1.1"},
		{name: "first of many forwarded", xff: "203.0.113.1, 198.51.100.1", expected: "203.0.113.1"},
		{name: "forwarded with padding", xff: "  203.0.113.1  ,198.51.100.1", expected: "203.0.113.1"},
		{name: "forwarded wins over real ip", xff: "203.0.113.1", realIP: "192.168.1.100", expected: "203.0.113.1"},
		{name: "empty forwarded entry falls through", xff: " ,198.51.100.1", realIP: "192.168.1.100", expected: "192.168.1.100"},
		{name: "real ip", realIP: "192.168.1.100", expected: "192.168.1.100"},
		{name: "IPv4 remote addr", remoteAddr: "192.168.1.1:54321", expected: "192.168.1.1"},
		{name: "IPv6 remote addr", remoteAddr: "[2001:db8::1]:8080", expected: "2001:db8::1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", expected: "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.remoteAddr != "" {
				r.RemoteAddr = tt.remoteAddr
			}

			require.Equal(t, tt.expected, ExtractClientIP(r))
		})
	}
}

func TestClientIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		expected   string
	}{
		{name: "trusted proxy", trustProxy: true, expected: "203.0.113.1"},
		{name: "untrusted proxy", trustProxy: false, expected: "10.0.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := ClientIPMiddleware(tt.trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIPFromContext(r.Context())
			}))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "10.0.0.5:41234"
			r.Header.Set("X-Forwarded-For", "203.0.113.1")

			handler.ServeHTTP(httptest.NewRecorder(), r)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestClientIPFromContext_missing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, ClientIPFromContext(r.Context()))
}
