package utils

import (
	"net/mail"
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum length accepted for account passwords.
const MinPasswordLength = 8

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether s is a well-formed local@domain address.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// mail.ParseAddress accepts display names ("A <a@b.c>"); require the bare form.
	if addr.Address != s {
		return false
	}
	// Require a dot in the domain so "user@localhost" style input is rejected.
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// StrongPassword reports whether s meets the account password policy:
// at least 8 characters with an uppercase letter, a lowercase letter,
// a digit, and a symbol.
func StrongPassword(s string) bool {
	if len(s) < MinPasswordLength {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, ch := range s {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
