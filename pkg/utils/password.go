package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor used for both account passwords and
// per-entry passwords. Each hash embeds its own random salt, so two hashes of
// the same password never compare equal as strings.
const bcryptCost = 10

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password produced hashedPassword.
// A mismatch returns (false, nil); a malformed hash returns (false, err).
// Callers must treat an error as a denial, never as a grant.
func CheckPassword(password, hashedPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return true, nil
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return false, err
}
