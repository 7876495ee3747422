package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrNoExpiry = fmt.Errorf("%w: no exp claim", apperrors.ErrInvalidToken)

// ExpiresAt decodes the payload segment of rawToken and returns its exp
// claim. Neither the header nor the signature is looked at.
func ExpiresAt(rawToken string) (time.Time, error) {
	segments := strings.Split(strings.TrimSpace(rawToken), ".")
	if len(segments) != 3 {
		return time.Time{}, fmt.Errorf("%w: expected 3 segments, got %d", apperrors.ErrInvalidToken, len(segments))
	}

	payload, err := jwtlib.NewParser(jwtlib.WithPaddingAllowed()).DecodeSegment(segments[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: decode payload: %w", apperrors.ErrInvalidToken, err)
	}

	var claims jwtlib.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: decode payload: %w", apperrors.ErrInvalidToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// IsExpired reports whether rawToken is past its exp claim. A token that
// cannot be decoded, or carries no exp, is reported as expired.
func IsExpired(rawToken string) bool {
	exp, err := ExpiresAt(rawToken)
	if err != nil {
		return true
	}
	return !NowTimeFunc().Before(exp)
}
