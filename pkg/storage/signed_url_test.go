package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("version-1", "snapshots/Y1/G1/v1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	ref, key, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "version-1", ref)
	require.Equal(t, "snapshots/Y1/G1/v1.pdf", key)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("version-1", "snapshots/Y1/G1/v1.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	ref, key, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "version-1", ref)
	require.Equal(t, "snapshots/Y1/G1/v1.pdf", key)
}

func TestSignedURLSignerRejectsAccessTokens(t *testing.T) {
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "version-1",
		"key": "snapshots/Y1/G1/v1.pdf",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("secret", time.Hour).Parse(access, false)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("version-1", "snapshots/Y1/G1/v1.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "version-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)

	_, _, _, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.Error(t, err)
}
