package utils

import (
	"crypto/rand"
)

// CollabCodeLength is the length of a user's collaboration code.
const CollabCodeLength = 6

const collabCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeByteMax is the largest multiple of the alphabet size below 256; random
// bytes at or above it are rejected so every character is equally likely.
const codeByteMax = byte(256 / len(collabCodeAlphabet) * len(collabCodeAlphabet))

// GenerateCollabCode returns a random 6-character collaboration code.
// Uniqueness across users is enforced by the caller (unique index + retry).
func GenerateCollabCode() (string, error) {
	code := make([]byte, 0, CollabCodeLength)
	buf := make([]byte, CollabCodeLength)
	for len(code) < CollabCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= codeByteMax {
				continue
			}
			code = append(code, collabCodeAlphabet[int(b)%len(collabCodeAlphabet)])
			if len(code) == CollabCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
