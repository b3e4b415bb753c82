package storage

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundtrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, expiresAt, err := signer.Sign("posts_20260101T000000.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	path, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "posts_20260101T000000.csv", path)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, _, err := signer.Sign("file.csv")
	require.NoError(t, err)

	_, err = signer.Verify(token + "ff")
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedPath(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, _, err := signer.Sign("file.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte("other.csv"))

	_, err = signer.Verify(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	ts := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte("file.csv"))
	token := strings.Join([]string{ts, encodedPath, signer.signature(ts, encodedPath)}, ".")

	_, err := signer.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSigner("secret", time.Hour).Sign("file.csv")
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	_, err := signer.Verify("just-one-part")
	assert.Error(t, err)
}

func TestSignRequiresSecret(t *testing.T) {
	signer := NewSigner("", time.Hour)

	_, _, err := signer.Sign("file.csv")
	assert.Error(t, err)
}
