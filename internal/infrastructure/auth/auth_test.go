package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "bizconsole-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.Generate("ana", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.Generate("ana", "admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := newTestJWTService()

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessTokenExpiration: time.Minute, Issuer: "bizconsole-test"})
	foreign, err := other.Generate("ana", "admin")
	require.NoError(t, err)
	_, err = svc.Validate(foreign.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: time.Minute, Issuer: "someone-else"})
	tok, err := wrongIssuer.Generate("ana", "admin")
	require.NoError(t, err)
	_, err = svc.Validate(tok.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "ana"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserStore_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	store := NewUserStore([]config.UserConfig{
		{Username: "ana", PasswordHash: string(hash), Role: "admin"},
		{Username: "bo", PasswordHash: string(hash)},
	})

	u, err := store.Authenticate("ana", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, &User{Username: "ana", Role: "admin"}, u)

	u, err = store.Authenticate("bo", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "viewer", u.Role)

	_, err = store.Authenticate("ana", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = store.Authenticate("nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	b := NewInMemoryTokenBlacklist()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, b.Revoke(ctx, "jti-expired", 0))

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "jti-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
