package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-internship-session/apiclient"
	"github.com/jrsteele09/go-internship-session/credentials"
	apperrors "github.com/jrsteele09/go-internship-session/internal/errors"
	"github.com/jrsteele09/go-internship-session/token"
	"github.com/jrsteele09/go-internship-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// API is the portal backend as seen by the session manager.
type API interface {
	Login(ctx context.Context, identifier, secret string) (credentials.Credential, error)
	Register(ctx context.Context, registration apiclient.Registration) error
	UserInfo(ctx context.Context) (*users.User, error)
	UpdateUser(ctx context.Context, id string, update users.ProfileUpdate) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, reset apiclient.PasswordReset) error
}

// InvalidationSource publishes sessions dropped by the HTTP interceptors.
// *apiclient.Client implements it.
type InvalidationSource interface {
	Subscribe(fn func(apiclient.InvalidationEvent)) (unsubscribe func())
}

// Manager coordinates the authentication state of the process.
//
// The manager lock is never held across a backend call: the interceptors
// call back into HandleInvalidation from inside those calls. Concurrent
// operations are not ordered, the last response to arrive wins.
type Manager struct {
	api       API
	port      Port
	navigator Navigator
	routes    Routes

	mu           sync.RWMutex
	snapshot     Snapshot
	closed       bool
	booting      chan struct{}
	listeners    map[int]func(Snapshot)
	nextListener int

	unsubscribe func()
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

func WithNavigator(navigator Navigator) ManagerOption {
	return func(m *Manager) {
		m.navigator = navigator
	}
}

func WithRoutes(routes Routes) ManagerOption {
	return func(m *Manager) {
		m.routes = routes
	}
}

// NewManager creates a manager in StateUninitialized. When api also
// implements InvalidationSource the manager subscribes to it.
func NewManager(api API, port Port, options ...ManagerOption) (*Manager, error) {
	if api == nil {
		return nil, errors.New("[NewManager] api is required")
	}
	if port == nil {
		return nil, errors.New("[NewManager] port is required")
	}

	m := &Manager{
		api:       api,
		port:      port,
		routes:    DefaultRoutes(),
		snapshot:  uninitialized(),
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(m)
	}

	if source, ok := api.(InvalidationSource); ok {
		m.unsubscribe = source.Subscribe(m.HandleInvalidation)
	}
	return m, nil
}

// Init checks the stored credential and loads the profile it belongs to.
// Steps run in order: credential lookup, expiry check, default header, then
// profile fetch. Operations issued while Init runs wait for it to finish, a
// second Init only waits.
//
// The manager always ends anonymous or authenticated. The returned error
// only reports why a stored session could not be resumed.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return apperrors.ErrManagerClosed
	}
	if m.booting != nil {
		m.mu.Unlock()
		return m.awaitBoot(ctx)
	}
	booting := make(chan struct{})
	m.booting = booting
	m.mu.Unlock()
	defer close(booting)

	credential, ok := m.port.GetCredential(ctx)
	if !ok {
		m.transition(anonymous())
		return nil
	}

	m.transition(authenticating())

	if token.IsExpired(credential.AccessToken) {
		log.Info().Msg("stored session expired")
		m.clearSession(ctx)
		return nil
	}

	m.port.SetDefaultAuthHeader(credential.AccessToken)

	user, err := m.api.UserInfo(ctx)
	if m.isClosed() {
		return apperrors.ErrManagerClosed
	}
	if err != nil {
		log.Err(err).Msg("failed to resume stored session")
		m.clearSession(ctx)
		return errors.Wrap(profileFetchError(err), "[Manager.Init] UserInfo")
	}

	m.transition(authenticated(user))
	return nil
}

// Login authenticates with the backend, persists the credential, loads the
// profile and navigates to the profile completion route or the home route.
// Any failure rolls the session back to anonymous.
func (m *Manager) Login(ctx context.Context, identifier, secret string) error {
	if err := m.ready(ctx); err != nil {
		return err
	}

	m.transition(authenticating())

	credential, err := m.api.Login(ctx, identifier, secret)
	if m.isClosed() {
		return apperrors.ErrManagerClosed
	}
	if err != nil {
		m.abandonLogin(ctx)
		if code := apiclient.StatusCode(err); code == http.StatusUnauthorized || code == http.StatusBadRequest {
			err = fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
		}
		return errors.Wrap(err, "[Manager.Login] Login")
	}

	m.port.SetCredential(ctx, credential)
	m.port.SetDefaultAuthHeader(credential.AccessToken)

	user, err := m.api.UserInfo(ctx)
	if m.isClosed() {
		return apperrors.ErrManagerClosed
	}
	if err != nil {
		m.clearSession(ctx)
		return errors.Wrap(profileFetchError(err), "[Manager.Login] UserInfo")
	}

	m.transition(authenticated(user))

	if user.RequiresProfileCompletion() {
		m.navigate(m.routes.CompleteProfile)
	} else {
		m.navigate(m.routes.Home)
	}
	return nil
}

// Logout drops the session and navigates to the login route. Calling it
// without a session is safe.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.ready(ctx); err != nil {
		return err
	}

	m.clearSession(ctx)
	m.navigate(m.routes.Login)
	return nil
}

// Verify re-checks the stored credential and re-fetches the profile. On
// failure the session is dropped like Logout, without navigating.
func (m *Manager) Verify(ctx context.Context) error {
	if err := m.ready(ctx); err != nil {
		return err
	}

	credential, ok := m.port.GetCredential(ctx)
	if !ok {
		m.clearSession(ctx)
		return apperrors.ErrNoSession
	}
	if token.IsExpired(credential.AccessToken) {
		m.clearSession(ctx)
		return apperrors.ErrSessionExpired
	}

	if m.State() != StateAuthenticated {
		m.transition(authenticating())
	}
	m.port.SetDefaultAuthHeader(credential.AccessToken)

	user, err := m.api.UserInfo(ctx)
	if m.isClosed() {
		return apperrors.ErrManagerClosed
	}
	if err != nil {
		m.clearSession(ctx)
		return errors.Wrap(profileFetchError(err), "[Manager.Verify] UserInfo")
	}

	m.transition(authenticated(user))
	return nil
}

// UpdateUser submits a partial profile update and then reloads the profile
// from the backend. Backend errors are returned unchanged.
func (m *Manager) UpdateUser(ctx context.Context, id string, update users.ProfileUpdate) error {
	if err := m.ready(ctx); err != nil {
		return err
	}

	if err := m.api.UpdateUser(ctx, id, update); err != nil {
		return err
	}

	user, err := m.api.UserInfo(ctx)
	if err != nil {
		return err
	}
	m.refresh(user)
	return nil
}

func (m *Manager) Register(ctx context.Context, registration apiclient.Registration) error {
	if err := m.ready(ctx); err != nil {
		return err
	}
	return errors.Wrap(m.api.Register(ctx, registration), "[Manager.Register] Register")
}

func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	if err := m.ready(ctx); err != nil {
		return err
	}
	return errors.Wrap(m.api.ForgotPassword(ctx, email), "[Manager.ForgotPassword] ForgotPassword")
}

// ResetPassword checks the new password locally before submitting it.
func (m *Manager) ResetPassword(ctx context.Context, reset apiclient.PasswordReset) error {
	if err := m.ready(ctx); err != nil {
		return err
	}
	if reset.NewPassword != reset.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}
	if err := users.ValidatePasswordStrength(reset.NewPassword); err != nil {
		return err
	}
	return errors.Wrap(m.api.ResetPassword(ctx, reset), "[Manager.ResetPassword] ResetPassword")
}

// HandleInvalidation drops the session after an interceptor cleared the
// credential and navigates to the login route.
func (m *Manager) HandleInvalidation(event apiclient.InvalidationEvent) {
	if m.isClosed() {
		return
	}
	log.Info().Str("reason", string(event.Reason)).Str("path", event.Path).Msg("session invalidated")

	m.port.ClearDefaultAuthHeader()
	m.transition(anonymous())
	m.navigate(m.routes.Login)
}

func (m *Manager) HasRole(roles ...users.RoleType) bool {
	user, _ := m.CurrentUser()
	return user.HasRole(roles...)
}

func (m *Manager) HasPermission(permission users.Permission) bool {
	user, _ := m.CurrentUser()
	return user.HasPermission(permission)
}

func (m *Manager) IsAdmin() bool {
	return m.HasRole(users.RoleAdmin)
}

func (m *Manager) IsCommissionChair() bool {
	return m.HasRole(users.RoleCommissionChair)
}

func (m *Manager) IsCommissionMember() bool {
	return m.HasRole(users.RoleCommissionMember)
}

func (m *Manager) IsStudent() bool {
	return m.HasRole(users.RoleStudent)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *Manager) State() State {
	return m.Snapshot().State()
}

// CurrentUser returns a copy of the loaded profile.
func (m *Manager) CurrentUser() (*users.User, bool) {
	return m.Snapshot().User()
}

func (m *Manager) Loading() bool {
	return m.Snapshot().Loading()
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Close detaches the manager. Calls still in flight complete without
// touching the session, and later calls fail with ErrManagerClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.listeners = make(map[int]func(Snapshot))
	unsubscribe := m.unsubscribe
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Manager) ready(ctx context.Context) error {
	if m.isClosed() {
		return apperrors.ErrManagerClosed
	}
	return m.awaitBoot(ctx)
}

func (m *Manager) awaitBoot(ctx context.Context) error {
	m.mu.RLock()
	booting := m.booting
	m.mu.RUnlock()

	if booting == nil {
		return nil
	}
	select {
	case <-booting:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// clearSession removes the credential and the default header and moves to
// StateAnonymous.
func (m *Manager) clearSession(ctx context.Context) {
	m.port.ClearCredential(ctx)
	m.port.ClearDefaultAuthHeader()
	m.transition(anonymous())
}

// abandonLogin rolls a rejected login back to StateAnonymous. The store is
// only cleared when it still holds a credential, so a remembered e-mail
// survives a mistyped password.
func (m *Manager) abandonLogin(ctx context.Context) {
	if _, ok := m.port.GetCredential(ctx); ok {
		m.clearSession(ctx)
		return
	}
	m.port.ClearDefaultAuthHeader()
	m.transition(anonymous())
}

// refresh replaces the profile of an authenticated session. It never
// resurrects a session dropped while the request was in flight.
func (m *Manager) refresh(user *users.User) {
	if m.State() != StateAuthenticated {
		return
	}
	m.transition(authenticated(user))
}

func (m *Manager) transition(next Snapshot) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	current := m.snapshot.state
	if !current.CanTransition(next.state) {
		m.mu.Unlock()
		log.Error().Stringer("from", current).Stringer("to", next.state).Msg("illegal session transition ignored")
		return
	}
	m.snapshot = next

	listeners := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	if current != next.state {
		log.Debug().Stringer("from", current).Stringer("to", next.state).Msg("session state changed")
	}
	for _, fn := range listeners {
		fn(next)
	}
}

func (m *Manager) navigate(route string) {
	if m.navigator == nil || m.isClosed() {
		return
	}
	log.Debug().Str("route", route).Msg("navigate")
	m.navigator.Navigate(route)
}

func profileFetchError(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrProfileFetch, err)
}
