package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravino/tapcore/internal/infrastructure/auth"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("admin-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m1 := auth.NewJWTManager("secret-one", time.Hour)
	m2 := auth.NewJWTManager("secret-two", time.Hour)

	token, err := m1.Generate("admin-1", "admin")
	require.NoError(t, err)

	_, err = m2.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := auth.NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("admin-1", "admin")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour)

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
