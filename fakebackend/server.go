package fakebackend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-internship-session/internal/config"
	"github.com/jrsteele09/go-internship-session/token/jwt"
	"github.com/jrsteele09/go-internship-session/users"
	"github.com/rs/zerolog/log"
)

const (
	defaultTokenTTL      = time.Hour
	defaultResetTokenTTL = time.Hour
	defaultLoginsPerMin  = 10
)

// Server is an in-memory stand-in for the portal backend. It serves the
// authentication and user endpoints the session client talks to.
type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string

	users   users.UserRepo
	issuer  *jwt.Issuer
	limiter *loginLimiter

	tokenTTL      time.Duration
	resetTokenTTL time.Duration
	loginsPerMin  int

	resetLock   sync.Mutex
	resetTokens map[string]resetToken // email to pending token

	mailbox *Mailbox
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithTokenTTL sets how long issued access tokens stay valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

func WithResetTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.resetTokenTTL = ttl
	}
}

// WithLoginRateLimit sets the number of login attempts allowed per client
// address and minute.
func WithLoginRateLimit(perMinute int) Option {
	return func(s *Server) {
		s.loginsPerMin = perMinute
	}
}

// New creates a fake backend signing tokens with the configured secret.
func New(cfg config.EnvConfig, userRepo users.UserRepo, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[fakebackend New] config is required")
	}
	if userRepo == nil {
		return nil, errors.New("[fakebackend New] user repo is required")
	}

	s := &Server{
		env:           cfg.GetEnv(),
		mux:           http.NewServeMux(),
		users:         userRepo,
		tokenTTL:      defaultTokenTTL,
		resetTokenTTL: defaultResetTokenTTL,
		loginsPerMin:  defaultLoginsPerMin,
		resetTokens:   make(map[string]resetToken),
		mailbox:       NewMailbox(),
	}
	for _, opt := range options {
		opt(s)
	}

	issuer, err := jwt.NewIssuer(cfg.GetFakeJWTSecret(), s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("[fakebackend New] failed to create token issuer: %w", err)
	}
	s.issuer = issuer
	s.limiter = newLoginLimiter(s.loginsPerMin)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Issuer returns the issuer used to sign and validate access tokens.
func (s *Server) Issuer() *jwt.Issuer {
	return s.issuer
}

// Mailbox returns the messages the server would have e-mailed.
func (s *Server) Mailbox() *Mailbox {
	return s.mailbox
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
