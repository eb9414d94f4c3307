package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute)

	token, err := m.GenerateAccessToken("user-1", "student@campus.edu", "student")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "student@campus.edu", claims.Email)
	assert.Equal(t, "student", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", 15*time.Minute)
	other := NewJWTManager("secret-b", 15*time.Minute)

	token, err := m.GenerateAccessToken("user-1", "a@b.c", "student")
	require.NoError(t, err)

	_, err = other.ParseAndValidate(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.GenerateAccessToken("user-1", "a@b.c", "student")
	require.NoError(t, err)

	_, err = m.ParseAndValidate(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", 15*time.Minute)

	_, err := m.ParseAndValidate("not.a.jwt")
	assert.Error(t, err)
}
