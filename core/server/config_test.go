package server_test

import (
	"testing"

	"content-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  server.Config
		want string
	}{
		{"Default", server.Config{Port: "8080"}, "http://localhost:8080"},
		{"BaseURL", server.Config{Port: "8080", BaseURL: "https://cdn.example.org"}, "https://cdn.example.org"},
		{"Trailing Slash", server.Config{BaseURL: "https://cdn.example.org/"}, "https://cdn.example.org"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.PublicURL())
		})
	}
}

func TestConfig_Address(t *testing.T) {
	assert.Equal(t, ":9000", server.Config{Port: "9000"}.Address())
}
