package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsu-dev/board-api/internal/models"
	"github.com/minsu-dev/board-api/pkg/config"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
)

func newTestSigner() *TokenSigner {
	return NewTokenSigner(config.JWTConfig{
		Secret:            "test_secret",
		AccessExpiration:  30 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{
		ID:       42,
		Email:    "alice@example.com",
		Username: "alice",
		IsAdmin:  true,
		Active:   true,
	}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	signer := newTestSigner()
	user := testUser()

	token, err := signer.IssueAccess(user, signer.AccessTTL())
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Empty(t, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokensGetUniqueIDs(t *testing.T) {
	signer := newTestSigner()
	user := testUser()

	first, err := signer.IssueAccess(user, signer.AccessTTL())
	require.NoError(t, err)
	second, err := signer.IssueAccess(user, signer.AccessTTL())
	require.NoError(t, err)

	firstClaims, err := signer.Verify(first)
	require.NoError(t, err)
	secondClaims, err := signer.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestRefreshTokenCarriesTypeMarker(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.IssueRefresh(testUser())
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, "alice", claims.Subject)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := newTestSigner()
	other := NewTokenSigner(config.JWTConfig{
		Secret:            "different_secret",
		AccessExpiration:  30 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
	})

	token, err := other.IssueAccess(testUser(), 30*time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.IssueAccess(testUser(), -time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer := newTestSigner()

	_, err := signer.Verify("not.a.token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidToken))
}

func TestRemainingTTLWithinAccessLifetime(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.IssueAccess(testUser(), signer.AccessTTL())
	require.NoError(t, err)

	ttl := signer.RemainingTTL(token)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Minute)
}

func TestRemainingTTLFloorsExpiredTokens(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.IssueAccess(testUser(), -time.Hour)
	require.NoError(t, err)

	assert.Equal(t, time.Second, signer.RemainingTTL(token))
}

func TestRemainingTTLFallsBackOnUndecodableToken(t *testing.T) {
	signer := newTestSigner()

	assert.Equal(t, signer.AccessTTL(), signer.RemainingTTL("garbage"))
}
