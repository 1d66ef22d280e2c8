package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 3*24*time.Hour)
	userID := primitive.NewObjectID().Hex()

	token, err := issuer.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenVerifyExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err := issuer.Verify("not.a.token")
	assert.Error(t, err)
}
