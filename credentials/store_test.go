package credentials_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-internship-session/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testKey = "internship-portal:auth:v1.0.0"

func newStore(t *testing.T, backend credentials.Backend, options ...credentials.StoreOption) *credentials.Store {
	t.Helper()
	store, err := credentials.NewStore(backend, testKey, options...)
	require.NoError(t, err)
	return store
}

// failingBackend fails every operation.
type failingBackend struct{}

func (failingBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingBackend) Write(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func (failingBackend) Remove(context.Context, string) error {
	return errors.New("read-only")
}

func TestStorageKey(t *testing.T) {
	require.Equal(t, "internship-portal:auth:v1.0.0", credentials.StorageKey("Internship Portal", "1.0.0"))
	require.NotEqual(t,
		credentials.StorageKey("Internship Portal", "1.0.0"),
		credentials.StorageKey("Internship Portal", "2.0.0"),
	)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := credentials.NewStore(nil, testKey)
	require.Error(t, err)

	_, err = credentials.NewStore(credentials.NewMemoryBackend(), "")
	require.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, credentials.NewMemoryBackend())

	_, ok := store.Get(ctx)
	require.False(t, ok, "empty store has no credential")

	want := credentials.Credential{AccessToken: "a.b.c", RefreshToken: "r", APIToken: "api"}
	store.Set(ctx, want)

	got, ok := store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, want, got)

	replacement := credentials.Credential{AccessToken: "d.e.f"}
	store.Set(ctx, replacement)
	got, ok = store.Get(ctx)
	require.True(t, ok)
	require.Equal(t, replacement, got)
}

func TestStore_EmptyAccessTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, credentials.NewMemoryBackend())

	store.Set(ctx, credentials.Credential{RefreshToken: "only-refresh"})
	_, ok := store.Get(ctx)
	require.False(t, ok)
}

func TestStore_CorruptEntryIsRemoved(t *testing.T) {
	ctx := context.Background()
	backend := credentials.NewMemoryBackend()
	require.NoError(t, backend.Write(ctx, testKey, []byte("{not json")))
	store := newStore(t, backend)

	_, ok := store.Get(ctx)
	require.False(t, ok)

	_, err := backend.Read(ctx, testKey)
	require.ErrorIs(t, err, credentials.ErrNotFound, "Get heals corrupt entries")
}

func TestStore_ClearIsIdempotentAndRemovesAuxiliaryKeys(t *testing.T) {
	ctx := context.Background()
	backend := credentials.NewMemoryBackend()
	store := newStore(t, backend, credentials.WithAuxiliaryKeys("lastRoute"))

	store.Set(ctx, credentials.Credential{AccessToken: "a.b.c"})
	store.RememberEmail(ctx, "ana@uni.edu")
	require.NoError(t, backend.Write(ctx, "lastRoute", []byte(`"/applications"`)))
	require.NoError(t, backend.Write(ctx, "unrelated", []byte(`1`)))

	email, ok := store.RememberedEmail(ctx)
	require.True(t, ok)
	require.Equal(t, "ana@uni.edu", email)

	store.Clear(ctx)
	store.Clear(ctx)

	_, ok = store.Get(ctx)
	require.False(t, ok)
	_, ok = store.RememberedEmail(ctx)
	require.False(t, ok)
	_, err := backend.Read(ctx, "lastRoute")
	require.ErrorIs(t, err, credentials.ErrNotFound)
	require.Equal(t, 1, backend.Len(), "keys the store does not own survive")
}

func TestStore_BackendFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, failingBackend{})

	require.NotPanics(t, func() {
		store.Set(ctx, credentials.Credential{AccessToken: "a.b.c"})
		store.RememberEmail(ctx, "ana@uni.edu")
		store.Clear(ctx)
	})
	_, ok := store.Get(ctx)
	require.False(t, ok)
	_, ok = store.RememberedEmail(ctx)
	require.False(t, ok)
}

func TestStore_UnreachableRedisIsSwallowed(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := newStore(t, credentials.NewRedisBackendFromClient(client, "test:"))

	require.NotPanics(t, func() {
		store.Set(ctx, credentials.Credential{AccessToken: "a.b.c"})
		store.Clear(ctx)
	})
	_, ok := store.Get(ctx)
	require.False(t, ok)
}

func TestStore_TokenSource(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, credentials.NewMemoryBackend())

	_, err := store.Token()
	require.ErrorIs(t, err, credentials.ErrNoCredential)

	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"exp": exp.Unix()}).SignedString([]byte("s"))
	require.NoError(t, err)
	store.Set(ctx, credentials.Credential{AccessToken: raw, RefreshToken: "r"})

	tok, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.True(t, exp.Equal(tok.Expiry))
	require.True(t, tok.Valid())
}

func TestFileBackend_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "storage.json")

	first := newStore(t, credentials.NewFileBackend(path))
	want := credentials.Credential{AccessToken: "a.b.c", APIToken: "api"}
	first.Set(ctx, want)

	second := newStore(t, credentials.NewFileBackend(path))
	got, ok := second.Get(ctx)
	require.True(t, ok)
	require.Equal(t, want, got)

	second.Clear(ctx)
	_, ok = first.Get(ctx)
	require.False(t, ok)
}

func TestFileBackend_CorruptFileIsHealed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))
	backend := credentials.NewFileBackend(path)

	require.NoError(t, backend.Remove(ctx, "anything"), "remove resets an undecodable document")
	_, err := backend.Read(ctx, testKey)
	require.ErrorIs(t, err, credentials.ErrNotFound)

	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))
	store := newStore(t, backend)
	_, ok := store.Get(ctx)
	require.False(t, ok)
	_, err = backend.Read(ctx, testKey)
	require.ErrorIs(t, err, credentials.ErrNotFound, "Get resets corrupt storage")
}

func TestFileBackend_MissingAndCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	backend := credentials.NewFileBackend(path)

	_, err := backend.Read(ctx, testKey)
	require.ErrorIs(t, err, credentials.ErrNotFound)
	require.NoError(t, backend.Remove(ctx, testKey))

	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))
	_, err = backend.Read(ctx, testKey)
	require.ErrorIs(t, err, credentials.ErrCorrupt)
	require.NotErrorIs(t, err, credentials.ErrNotFound)

	require.NoError(t, backend.Write(ctx, "k", []byte("v")), "writes replace an unreadable document")
	value, err := backend.Read(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)
}
