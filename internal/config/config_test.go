package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-internship-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("STORAGE_BACKEND", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.StorageBackendFile, c.GetStorageBackend())
	require.Equal(t, "/auth/login", c.GetLoginRoute())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "3")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, 3, c.GetRedisDB())
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "one")

	c := config.New()
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 0, c.GetRedisDB())
}

func TestLoadReadsDotEnv(t *testing.T) {
	const name = "APP_NAME_FROM_DOTENV_TEST"
	t.Setenv("APP_NAME", "")
	os.Unsetenv("APP_NAME")

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("APP_NAME="+name+"\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("APP_NAME") })

	c := config.Load(file)
	require.Equal(t, name, c.GetAppName())
}
