package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAppVersion() string
	GetDataFolder() string
	GetLogLevel() string
	GetFakeJWTSecret() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Session
}

func New() Config {
	return mainConfig{}
}

// Load reads an optional .env file into the process environment before
// returning the environment backed configuration. Variables already set in
// the environment take precedence over the file.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return New()
}
