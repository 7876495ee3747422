package credentials

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a Backend when a key holds no value.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt is returned by a Backend whose stored data cannot be decoded.
	// Removing any key resets the backend to a readable state.
	ErrCorrupt = errors.New("corrupt storage")
	// ErrNoCredential is returned by Store.Token when no session is stored.
	ErrNoCredential = errors.New("no credential stored")
)

// Credential is the bearer token of a session and its optional companions.
type Credential struct {
	AccessToken  string `json:"accessToken"`            // JWT presented as the bearer token
	RefreshToken string `json:"refreshToken,omitempty"` // Optional refresh token
	APIToken     string `json:"apiToken,omitempty"`     // Optional token for auxiliary APIs
}

// Valid reports whether c carries an access token. A credential without one
// is the same as no session at all.
func (c Credential) Valid() bool {
	return c.AccessToken != ""
}

// Backend is the durable key/value layer a Store persists through.
type Backend interface {
	// Read returns ErrNotFound when key holds no value.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	// Remove is a no-op when key holds no value.
	Remove(ctx context.Context, key string) error
}
