package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-internship-session/internal/utils"
	"github.com/jrsteele09/go-internship-session/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RememberedEmailKey holds the e-mail the user chose to be remembered with.
const RememberedEmailKey = "rememberedEmail"

// StorageKey derives the credential key from the application name and
// version. Bumping the version makes entries written by an older release
// invisible instead of half-parsed.
func StorageKey(appName, version string) string {
	return fmt.Sprintf("%s:auth:v%s", utils.Slug(appName), version)
}

// Store owns the persisted session credential. It is the only writer of the
// credential key and of the auxiliary keys cleared alongside it.
//
// Persistence is best-effort: backend failures are logged and never returned,
// the in-memory session stays authoritative for the process lifetime.
type Store struct {
	backend Backend
	key     string
	auxKeys []string
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithAuxiliaryKeys adds keys that Clear removes together with the credential.
func WithAuxiliaryKeys(keys ...string) StoreOption {
	return func(s *Store) {
		s.auxKeys = append(s.auxKeys, keys...)
	}
}

// NewStore creates a store persisting the credential under key.
// RememberedEmailKey is always treated as an auxiliary key.
func NewStore(backend Backend, key string, options ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, errors.New("[NewStore] backend is required")
	}
	if key == "" {
		return nil, errors.New("[NewStore] key is required")
	}

	s := &Store{
		backend: backend,
		key:     key,
		auxKeys: []string{RememberedEmailKey},
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Key returns the storage key the credential lives under.
func (s *Store) Key() string {
	return s.key
}

// Get returns the stored credential, or false when there is none or it has
// no access token.
//
// Get is not a pure read: an entry that fails to parse is removed from the
// backend so the next boot starts clean.
func (s *Store) Get(ctx context.Context) (Credential, bool) {
	data, err := s.backend.Read(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return Credential{}, false
	}
	if errors.Is(err, ErrCorrupt) {
		log.Warn().Err(err).Str("key", s.key).Msg("credential store: corrupt storage reset")
		s.remove(ctx, s.key)
		return Credential{}, false
	}
	if err != nil {
		log.Err(err).Str("key", s.key).Msg("credential store: read failed")
		return Credential{}, false
	}

	var credential Credential
	if err := json.Unmarshal(data, &credential); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("credential store: corrupt entry removed")
		s.remove(ctx, s.key)
		return Credential{}, false
	}

	if !credential.Valid() {
		return Credential{}, false
	}
	return credential, true
}

// Set persists credential, replacing any previous one.
func (s *Store) Set(ctx context.Context, credential Credential) {
	data, err := json.Marshal(credential)
	if err != nil {
		log.Err(err).Str("key", s.key).Msg("credential store: encode failed")
		return
	}
	if err := s.backend.Write(ctx, s.key, data); err != nil {
		log.Err(err).Str("key", s.key).Msg("credential store: write failed")
	}
}

// Clear removes the credential and every auxiliary key. Calling it with
// nothing stored is a no-op.
func (s *Store) Clear(ctx context.Context) {
	s.remove(ctx, s.key)
	for _, key := range s.auxKeys {
		s.remove(ctx, key)
	}
}

// RememberEmail stores the e-mail to prefill on the next login.
func (s *Store) RememberEmail(ctx context.Context, email string) {
	data, err := json.Marshal(email)
	if err != nil {
		return
	}
	if err := s.backend.Write(ctx, RememberedEmailKey, data); err != nil {
		log.Err(err).Str("key", RememberedEmailKey).Msg("credential store: write failed")
	}
}

// RememberedEmail returns the remembered e-mail, if any.
func (s *Store) RememberedEmail(ctx context.Context) (string, bool) {
	data, err := s.backend.Read(ctx, RememberedEmailKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Err(err).Str("key", RememberedEmailKey).Msg("credential store: read failed")
		}
		return "", false
	}

	var email string
	if err := json.Unmarshal(data, &email); err != nil || email == "" {
		s.remove(ctx, RememberedEmailKey)
		return "", false
	}
	return email, true
}

// Token implements oauth2.TokenSource over the stored credential.
func (s *Store) Token() (*oauth2.Token, error) {
	credential, ok := s.Get(context.Background())
	if !ok {
		return nil, ErrNoCredential
	}

	tok := &oauth2.Token{
		AccessToken:  credential.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: credential.RefreshToken,
	}
	if exp, err := token.ExpiresAt(credential.AccessToken); err == nil {
		tok.Expiry = exp
	}
	return tok, nil
}

var _ oauth2.TokenSource = (*Store)(nil)

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.backend.Remove(ctx, key); err != nil {
		log.Err(err).Str("key", key).Msg("credential store: remove failed")
	}
}
