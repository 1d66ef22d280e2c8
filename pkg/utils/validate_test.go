package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.example.co", true},
		{"invalid-email", false},
		{"", false},
		{"@example.com", false},
		{"alice@", false},
		{"user@localhost", false},
		{"Alice Name <alice@example.com>", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"strong", "Str0ng!Pass", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "str0ng!pass", false},
		{"no lowercase", "STR0NG!PASS", false},
		{"no digit", "Strong!Pass", false},
		{"no symbol", "Str0ngPass", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword(tt.password))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
