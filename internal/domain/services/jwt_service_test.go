package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sampoornaangan-backend/internal/infrastructure/config"
)

func newTestJWTService(expiryHours int) InterfaceJWTService {
	return NewJWTService(&config.Config{
		JWTSecretKey:   "test-secret-key",
		JWTExpiryHours: expiryHours,
	}, nil)
}

func TestJWTServiceRoundTrip(t *testing.T) {
	svc := newTestJWTService(168)

	token, err := svc.GenerateToken(42, "anjali@example.com", "parent", "direct")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "anjali@example.com", claims.Email)
	assert.Equal(t, "parent", claims.Role)
	assert.Equal(t, "direct", claims.AuthMethod)
	assert.Equal(t, TokenTypeUser, claims.TokenType)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTServiceAdminToken(t *testing.T) {
	svc := newTestJWTService(168)

	token, err := svc.GenerateAdminToken(7)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Empty(t, claims.Email)
	assert.Empty(t, claims.Role)
}

func TestJWTServiceRejectsWrongKey(t *testing.T) {
	token, err := newTestJWTService(168).GenerateToken(1, "a@b.c", "parent", "direct")
	require.NoError(t, err)

	other := NewJWTService(&config.Config{
		JWTSecretKey:   "a-different-key",
		JWTExpiryHours: 168,
	}, nil)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	// Sign an already-expired claim set with the service's key
	now := time.Now()
	claims := &JWTClaims{
		UserID:    1,
		TokenType: TokenTypeUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			NotBefore: jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = newTestJWTService(168).ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := newTestJWTService(168)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ValidateToken(bad)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}
