package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/minsu-dev/board-api/internal/models"
	"github.com/minsu-dev/board-api/pkg/config"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
)

// TokenSigner creates and verifies self-contained HS256 tokens. It holds no
// mutable state: every method is a pure function over the configured secret
// and lifetimes. Revocation checks are layered on top by AuthService.
type TokenSigner struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenSigner constructs a signer from JWT configuration.
func NewTokenSigner(cfg config.JWTConfig) *TokenSigner {
	return &TokenSigner{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessExpiration,
		refreshTTL: cfg.RefreshExpiration,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (s *TokenSigner) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccess signs an access token for the user with the given lifetime.
// Claims carry the username as subject plus email, user_id and is_admin, and
// every token receives a fresh jti so revocation is per-token.
func (s *TokenSigner) IssueAccess(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &models.TokenClaims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return s.sign(claims)
}

// IssueRefresh signs a refresh token with the fixed refresh lifetime and a
// type marker distinguishing it from access tokens structurally.
func (s *TokenSigner) IssueRefresh(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := &models.TokenClaims{
		UserID:    user.ID,
		TokenType: models.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return s.sign(claims)
}

// Verify parses and validates a token, returning its claims. Signature
// mismatch, malformed structure, unexpected algorithm and past expiry all
// surface as an invalid-token error. Verification is stateless and never
// consults the revocation store.
func (s *TokenSigner) Verify(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, "invalid or expired token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "invalid token claims")
	}

	return claims, nil
}

// RemainingTTL returns the time until the token's expiry, floored at one
// second, even when the token is already expired. When the claims cannot be
// decoded at all it falls back to the configured access lifetime so a
// blacklist entry always at least covers the token's maximum possible life.
func (s *TokenSigner) RemainingTTL(tokenString string) time.Duration {
	parser := jwt.NewParser()
	claims := &models.TokenClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil || claims.ExpiresAt == nil {
		return s.accessTTL
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < time.Second {
		return time.Second
	}
	return remaining
}

func (s *TokenSigner) sign(claims *models.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, nil
}
