package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are the access token claims understood by the portal backend.
type Claims struct {
	Subject   string    // Users unique ID
	Role      string    // Role tag of the user at issue time
	ID        string    // jti
	IssuedAt  time.Time // iat
	ExpiresAt time.Time // exp
}

// Issuer signs and validates HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an issuer that signs tokens with secret, valid for ttl.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("[NewIssuer] secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewIssuer] ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates an access token for userID expiring after the issuer's ttl.
func (i *Issuer) Issue(userID, role string) (string, error) {
	return i.IssueWithExpiry(userID, role, NowTimeFunc().Add(i.ttl))
}

// IssueWithExpiry creates an access token with an explicit exp claim.
func (i *Issuer) IssueWithExpiry(userID, role string, exp time.Time) (string, error) {
	claims := jwtlib.MapClaims{
		"sub":  userID,                      // Subject: the user the token represents
		"role": role,                        // Role tag, informational only
		"iat":  int64(NowTimeFunc().Unix()), // Issued At
		"exp":  exp.Unix(),                  // Expiry
		"jti":  uuid.New().String(),         // Unique token ID
	}

	signedToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, nil
}

// Validate verifies the signature and expiry of rawToken and extracts its claims.
func (i *Issuer) Validate(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, fmt.Errorf("%w: empty token", apperrors.ErrInvalidToken)
	}

	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	token, err := parser.Parse(rawToken, func(*jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	})
	if errors.Is(err, jwtlib.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims from token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub claim", apperrors.ErrInvalidToken)
	}
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	return &Claims{
		Subject:   sub,
		Role:      role,
		ID:        jti,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
