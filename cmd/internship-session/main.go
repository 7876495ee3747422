package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jrsteele09/go-internship-session/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	commit = "none"
	date   = "unknown"
)

type globalOptions struct {
	envFile  string
	apiURL   string
	logLevel string
}

var (
	cfg  = config.New()
	opts globalOptions
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "internship-session",
		Short: "Sign in to the internship portal from the terminal",
		Long: `internship-session drives the portal session client.

The session credential lives in the configured store (file, memory or
redis) and is attached to every backend request until the backend
rejects it. Routes the portal would navigate to are printed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.envFile != "" {
				cfg = config.Load(opts.envFile)
			} else {
				cfg = config.Load()
			}
			setupLogging(cfg, opts.logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file (default .env)")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "Backend base URL (default from API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (default from LOG_LEVEL)")

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		verifyCmd(),
		updateCmd(),
		registerCmd(),
		forgotPasswordCmd(),
		resetPasswordCmd(),
		serveFakeCmd(),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.EnvConfig, level string) {
	if level == "" {
		level = cfg.GetLogLevel()
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
