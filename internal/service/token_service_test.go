package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Expiry: time.Hour})

	issued, err := svc.Issue("prof-1", models.RoleProfessor, "prof@example.com", "Dr One")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "prof-1", claims.UserID)
	assert.Equal(t, models.RoleProfessor, claims.Role)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "one"})
	verifier := NewTokenService(TokenConfig{Secret: "two"})

	issued, err := issuer.Issue("admin-1", models.RoleAdmin, "", "")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(issued.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Expiry: time.Minute})
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	issued, err := svc.Issue("admin-1", models.RoleAdmin, "", "")
	require.NoError(t, err)

	_, err = svc.ValidateToken(issued.AccessToken)
	assert.Error(t, err)
}

func TestTokenServiceRejectsUnknownRole(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	claims := &models.JWTClaims{UserID: "x", Role: "JANITOR", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)

	_, err = svc.Issue("x", "JANITOR", "", "")
	assert.Error(t, err)
}
