package apiclient

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-internship-session/credentials"
	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// ErrSessionExpired is returned, wrapped, for requests the client refused to
// send because the stored token had already expired. Callers should treat it
// as "no session" rather than as a network failure.
var ErrSessionExpired = apperrors.ErrSessionExpired

// InvalidationReason says why a session was dropped.
type InvalidationReason string

const (
	ReasonTokenExpired InvalidationReason = "token_expired"
	ReasonUnauthorized InvalidationReason = "unauthorized"
	ReasonForbidden    InvalidationReason = "forbidden"
)

// InvalidationEvent is published whenever an interceptor drops the session.
type InvalidationEvent struct {
	Reason     InvalidationReason
	StatusCode int // 0 when the request never left the process
	Method     string
	Path       string
}

// CredentialSource is the read/clear view of the credential store the
// interceptors need.
type CredentialSource interface {
	Get(ctx context.Context) (credentials.Credential, bool)
	Clear(ctx context.Context)
}

// noCredentials is the source used when the client is built without a store.
type noCredentials struct{}

func (noCredentials) Get(context.Context) (credentials.Credential, bool) {
	return credentials.Credential{}, false
}

func (noCredentials) Clear(context.Context) {}

// requestInterceptor attaches the stored bearer token to every request and
// refuses to send requests whose token has already expired.
type requestInterceptor struct {
	next    http.RoundTripper
	source  CredentialSource
	publish func(InvalidationEvent)
}

func (t *requestInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	credential, ok := t.source.Get(req.Context())
	if !ok {
		return t.next.RoundTrip(req)
	}

	if token.IsExpired(credential.AccessToken) {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		log.Info().Str("method", req.Method).Str("path", req.URL.Path).Msg("request blocked: stored token expired")
		t.source.Clear(req.Context())
		t.publish(InvalidationEvent{
			Reason: ReasonTokenExpired,
			Method: req.Method,
			Path:   req.URL.Path,
		})
		return nil, ErrSessionExpired
	}

	// RoundTrippers must not modify the caller's request
	authorised := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: credential.AccessToken, TokenType: "Bearer"}).SetAuthHeader(authorised)
	return t.next.RoundTrip(authorised)
}

// responseInterceptor drops the session whenever the backend answers 401 or
// 403 to a request that carried a bearer token. Rejections of anonymous
// requests, such as a login with a wrong password, are left to the caller.
// The response is always returned so the caller can react locally.
type responseInterceptor struct {
	next    http.RoundTripper
	source  CredentialSource
	publish func(InvalidationEvent)
}

func (t *responseInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if req.Header.Get("Authorization") == "" {
		return resp, nil
	}

	var reason InvalidationReason
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		reason = ReasonUnauthorized
	case http.StatusForbidden:
		reason = ReasonForbidden
	default:
		return resp, nil
	}

	log.Info().Str("method", req.Method).Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("session invalidated by backend")
	t.source.Clear(req.Context())
	t.publish(InvalidationEvent{
		Reason:     reason,
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		Path:       req.URL.Path,
	})
	return resp, nil
}
