package jwt_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/token"
	"github.com/jrsteele09/go-internship-session/token/jwt"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *jwt.Issuer {
	t.Helper()
	issuer, err := jwt.NewIssuer("issuer-test-secret", 15*time.Minute)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := jwt.NewIssuer("", time.Minute)
	require.Error(t, err)

	_, err = jwt.NewIssuer("secret", 0)
	require.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	issuer := newIssuer(t)

	raw, err := issuer.Issue("u1", "STUDENT")
	require.NoError(t, err)
	require.False(t, token.IsExpired(raw))

	claims, err := issuer.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "STUDENT", claims.Role)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, 2*time.Second)
}

func TestValidate_Expired(t *testing.T) {
	issuer := newIssuer(t)

	raw, err := issuer.IssueWithExpiry("u1", "ADMIN", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, token.IsExpired(raw))

	_, err = issuer.Validate(raw)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	require.NotErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	other, err := jwt.NewIssuer("another-secret", time.Minute)
	require.NoError(t, err)

	raw, err := other.Issue("u1", "ADMIN")
	require.NoError(t, err)

	_, err = newIssuer(t).Validate(raw)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := newIssuer(t).Validate("")
	require.Error(t, err)

	_, err = newIssuer(t).Validate("not.a.token")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
