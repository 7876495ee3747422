package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jrsteele09/go-internship-session/apiclient"
	"github.com/jrsteele09/go-internship-session/credentials"
	"github.com/jrsteele09/go-internship-session/internal/config"
	"github.com/jrsteele09/go-internship-session/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// app wires a session manager to the configured credential store and backend.
type app struct {
	store   *credentials.Store
	client  *apiclient.Client
	manager *session.Manager
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	a.store, err = credentials.NewStore(backend, credentials.StorageKey(cfg.GetAppName(), cfg.GetAppVersion()))
	if err != nil {
		a.Close()
		return nil, err
	}

	metrics, err := apiclient.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	baseURL := cfg.GetAPIBaseURL()
	if opts.apiURL != "" {
		baseURL = opts.apiURL
	}
	a.client, err = apiclient.New(baseURL,
		apiclient.WithCredentialSource(a.store),
		apiclient.WithEndpoints(apiclient.EndpointsFromConfig(cfg)),
		apiclient.WithTimeout(cfg.GetRequestTimeout()),
		apiclient.WithMetrics(metrics),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.manager, err = session.NewManager(a.client, session.NewPort(a.store, a.client),
		session.WithRoutes(session.RoutesFromConfig(cfg)),
		session.WithNavigator(session.NavigatorFunc(func(route string) {
			info("→ navigate to %s", route)
		})),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		a.manager.Close()
		return nil
	})

	return a, nil
}

func (a *app) openBackend(ctx context.Context) (credentials.Backend, error) {
	switch cfg.GetStorageBackend() {
	case config.StorageBackendMemory:
		return credentials.NewMemoryBackend(), nil
	case config.StorageBackendRedis:
		backend, err := credentials.NewRedisBackend(ctx, credentials.RedisConfig{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, backend.Close)
		return backend, nil
	case config.StorageBackendFile:
		return credentials.NewFileBackend(filepath.Join(cfg.GetDataFolder(), "session.json")), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.GetStorageBackend())
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Err(err).Msg("failed to release resource")
		}
	}
	a.closers = nil
}

// withSession boots a session manager, runs fn and releases it.
func withSession(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.manager.Init(ctx); err != nil {
		warn("stored session could not be resumed: %s", err)
	}
	return fn(ctx, a)
}
