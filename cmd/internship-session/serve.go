package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-internship-session/fakebackend"
	fakeuserrepo "github.com/jrsteele09/go-internship-session/users/repofake"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveFakeCmd() *cobra.Command {
	var (
		port     string
		tokenTTL time.Duration
		noDemo   bool
	)

	cmd := &cobra.Command{
		Use:   "serve-fake",
		Short: "Run an in-memory portal backend for local development",
		Long: `Run an in-memory stand-in for the portal backend. It serves the
login, registration, password and user endpoints, signs tokens with
FAKE_JWT_SECRET and seeds one demo account per role.

Examples:
  internship-session serve-fake
  internship-session serve-fake --port :9090 --token-ttl 2m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = cfg.GetPort()
			}
			return run(port, tokenTTL, !noDemo)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen address (default from PORT)")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", time.Hour, "Lifetime of issued access tokens")
	cmd.Flags().BoolVar(&noDemo, "no-demo", false, "Start without demo accounts")

	return cmd
}

func run(port string, tokenTTL time.Duration, demo bool) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(cfg.GetAppName())

	backend, err := fakebackend.New(cfg, fakeuserrepo.NewFakeUserRepo(), fakebackend.WithTokenTTL(tokenTTL))
	if err != nil {
		return err
	}
	if demo {
		if err := backend.InitialiseDemoUsers(); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", backend)

	server := &http.Server{Addr: port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(server) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	returnError = shutdown(server)
	log.Info().Msg("Server stopped")
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
