package netx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "10.0.0.1", "192.168.1.1:5000", "10.0.0.1"},
		{"forwarded chain", "203.0.113.5, 10.0.0.1, 10.0.0.2", "192.168.1.1:5000", "203.0.113.5"},
		{"remote addr with port", "", "192.168.1.1:5000", "192.168.1.1"},
		{"remote addr ipv6", "", "[::1]:8080", "::1"},
		{"remote addr without port", "", "192.168.1.9", "192.168.1.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set(HeaderXForwardedFor, tt.xff)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
