package auth_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/auth"
)

func newService(t *testing.T, key, issuer, audience string, clock clockwork.Clock) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{
		SigningKey: key,
		Issuer:     issuer,
		Audience:   audience,
		Clock:      clock,
	})
	require.NoError(t, err)
	return svc
}

func TestJWTService_GenerateAndValidateToken(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newService(t, "test-secret-key-for-testing-only", "roadcast", "roadcast-admin", clock)

	token, expiresAt, err := svc.GenerateToken("ops@roadcast", []string{auth.ScopeCacheAdmin}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, clock.Now().Add(auth.DefaultTokenExpiry), expiresAt)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@roadcast", claims.Subject)
	assert.Equal(t, "roadcast", claims.Issuer)
	assert.True(t, claims.HasScope(auth.ScopeCacheAdmin))
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_MissingSigningKey(t *testing.T) {
	_, err := auth.NewJWTService(auth.JWTConfig{})
	assert.ErrorIs(t, err, auth.ErrSigningKeyMissing)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newService(t, "test-secret-key-for-testing-only", "roadcast", "roadcast-admin", nil)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newService(t, "test-key", "roadcast", "roadcast-admin", clock)

	token, _, err := svc.GenerateToken("ops", []string{auth.ScopeCacheAdmin}, 15*time.Minute)
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWTService_Mismatch(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		issuer   string
		audience string
	}{
		{"signing key", "key-two", "roadcast", "roadcast-admin"},
		{"issuer", "key-one", "someone-else", "roadcast-admin"},
		{"audience", "key-one", "roadcast", "another-api"},
	}

	issuer := newService(t, "key-one", "roadcast", "roadcast-admin", nil)
	token, _, err := issuer.GenerateToken("ops", []string{auth.ScopeCacheAdmin}, time.Hour)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := newService(t, tt.key, tt.issuer, tt.audience, nil)
			_, err := verifier.ValidateToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestJWTService_Authorize(t *testing.T) {
	svc := newService(t, "test-key", "roadcast", "roadcast-admin", nil)

	scoped, _, err := svc.GenerateToken("ops", []string{auth.ScopeCacheAdmin}, time.Hour)
	require.NoError(t, err)
	unscoped, _, err := svc.GenerateToken("viewer", nil, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Authorize(scoped, auth.ScopeCacheAdmin)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	_, err = svc.Authorize(unscoped, auth.ScopeCacheAdmin)
	assert.ErrorIs(t, err, auth.ErrInsufficientScope)
}
