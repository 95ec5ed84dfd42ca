package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckOrigin(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"https://app.example.com"}, "", true},
		{"wildcard", []string{"*"}, "https://anywhere.example.com", true},
		{"exact match", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"mismatch", []string{"https://app.example.com"}, "https://evil.example.com", false},
		{"empty allowlist", nil, "https://app.example.com", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Server{AllowedOrigins: tc.allowed}
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, s.checkOrigin(req))
		})
	}
}
