package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("All fields required"), http.StatusBadRequest},
		{"conflict", Conflict("Email already registered"), http.StatusBadRequest},
		{"not found", NotFound("Post does not exist"), http.StatusNotFound},
		{"auth", Auth("Incorrect password"), http.StatusUnauthorized},
		{"access denied", AccessDenied("Password required", true), http.StatusForbidden},
		{"unknown", errors.New("connection reset"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("loading post: %w", NotFound("Post does not exist")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestIsPasswordProtected(t *testing.T) {
	assert.True(t, IsPasswordProtected(AccessDenied("Password required", true)))
	assert.False(t, IsPasswordProtected(AccessDenied("Incorrect password", false)))
	assert.False(t, IsPasswordProtected(NotFound("Post does not exist")))
	assert.False(t, IsPasswordProtected(errors.New("other")))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "All fields required", Validation("All fields required").Error())
	assert.Equal(t, "Already a collaborator", Conflict("Already a collaborator").Error())
	assert.Equal(t, "Email not registered", NotFound("Email not registered").Error())
	assert.Equal(t, "not authorized", Auth("not authorized").Error())
	assert.Equal(t, "Incorrect password", AccessDenied("Incorrect password", true).Error())
}
