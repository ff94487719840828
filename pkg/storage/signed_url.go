package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const snapshotAudience = "timetable-snapshot"

// snapshotClaims bind a download to one stored object. The subject carries the
// version record id.
type snapshotClaims struct {
	ObjectKey string `json:"key"`
	jwt.RegisteredClaims
}

// SignedURLSigner issues and verifies expiring download tokens for stored snapshots.
// The signing key is derived from the shared secret, so access tokens are never
// accepted as download tokens.
type SignedURLSigner struct {
	key []byte
	ttl time.Duration
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	var key []byte
	if secret != "" {
		mac := hmac.New(sha256.New, []byte(secret))
		_, _ = mac.Write([]byte(snapshotAudience))
		key = mac.Sum(nil)
	}
	return &SignedURLSigner{key: key, ttl: ttl}
}

// Generate returns a signed token binding ref (a version id) to objectKey.
func (s *SignedURLSigner) Generate(ref, objectKey string) (string, time.Time, error) {
	if ref == "" || objectKey == "" {
		return "", time.Time{}, fmt.Errorf("ref and object key required")
	}
	if len(s.key) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := snapshotClaims{
		ObjectKey: objectKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ref,
			Audience:  jwt.ClaimStrings{snapshotAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign snapshot token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Parse validates a token and returns the embedded metadata.
// When allowExpired is true, the expiry check is skipped.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (ref, objectKey string, expiresAt time.Time, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(snapshotAudience),
		jwt.WithExpirationRequired(),
	}
	if allowExpired {
		opts = []jwt.ParserOption{
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		}
	}

	claims := &snapshotClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", "", time.Time{}, fmt.Errorf("token expired")
	case err != nil:
		return "", "", time.Time{}, fmt.Errorf("invalid snapshot token: %w", err)
	}
	if claims.Subject == "" || claims.ObjectKey == "" || claims.ExpiresAt == nil {
		return "", "", time.Time{}, fmt.Errorf("invalid snapshot token: missing claims")
	}
	return claims.Subject, claims.ObjectKey, claims.ExpiresAt.Time, nil
}
