package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateToken("user-1", "tourist@example.com", "TOURIST")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tourist@example.com", claims.Email)
	assert.Equal(t, "TOURIST", claims.Role)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	m := NewManager("secret-a", time.Hour, 24*time.Hour)
	other := NewManager("secret-b", time.Hour, 24*time.Hour)

	token, err := m.GenerateToken("user-1", "host@example.com", "HOST")
	assert.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 24*time.Hour)

	token, err := m.GenerateToken("user-1", "host@example.com", "HOST")
	assert.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
