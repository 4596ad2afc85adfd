// Package auth issues and verifies the bearer tokens that guard the admin
// endpoints. Tokens are HS256 JWTs signed with a shared secret.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// DefaultTokenExpiry is how long admin tokens are valid when no TTL is given.
const DefaultTokenExpiry = 1 * time.Hour

// ScopeCacheAdmin allows inspecting and clearing the weather cache.
const ScopeCacheAdmin = "cache:admin"

// Predefined JWT errors.
var (
	ErrInvalidToken      = errors.New("invalid admin token")
	ErrTokenExpired      = errors.New("admin token has expired")
	ErrInsufficientScope = errors.New("admin token lacks required scope")
	ErrSigningKeyMissing = errors.New("signing key is required")
)

// Claims represents the claims in admin tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Scopes lists the operations the holder may perform.
	Scopes []string `json:"scp"`
}

// HasScope reports whether the claims grant scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// JWTConfig holds configuration for the JWT service.
type JWTConfig struct {
	// SigningKey is the secret key used to sign JWTs (required).
	SigningKey string

	// Issuer is the issuer claim for tokens (e.g., "roadcast").
	Issuer string

	// Audience is the audience claim for tokens (e.g., "roadcast-admin").
	Audience string

	// Clock is used for issued-at and expiry checks (optional).
	Clock clockwork.Clock
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	clock      clockwork.Clock
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.SigningKey == "" {
		return nil, ErrSigningKeyMissing
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		clock:      clock,
	}, nil
}

// GenerateToken creates a token for subject carrying scopes, valid for ttl
// (DefaultTokenExpiry when ttl <= 0).
func (s *JWTService) GenerateToken(subject string, scopes []string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	now := s.clock.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		Scopes: scopes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing admin token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authorize validates a token and checks that it grants scope.
func (s *JWTService) Authorize(tokenString, scope string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.HasScope(scope) {
		return nil, ErrInsufficientScope
	}
	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
