package session

import (
	"context"

	"github.com/jrsteele09/go-internship-session/credentials"
)

const authorizationHeader = "Authorization"

// Port is the session's access to process-wide state: the persisted
// credential and the default Authorization header.
type Port interface {
	GetCredential(ctx context.Context) (credentials.Credential, bool)
	SetCredential(ctx context.Context, credential credentials.Credential)
	ClearCredential(ctx context.Context)
	SetDefaultAuthHeader(accessToken string)
	ClearDefaultAuthHeader()
}

// CredentialStore is the part of credentials.Store a StorePort uses.
type CredentialStore interface {
	Get(ctx context.Context) (credentials.Credential, bool)
	Set(ctx context.Context, credential credentials.Credential)
	Clear(ctx context.Context)
}

// DefaultHeaders is implemented by *apiclient.Client.
type DefaultHeaders interface {
	SetDefaultHeader(key, value string)
	DeleteDefaultHeader(key string)
}

// StorePort binds a credential store and an HTTP client's default headers.
type StorePort struct {
	store   CredentialStore
	headers DefaultHeaders
}

var _ Port = (*StorePort)(nil)

func NewPort(store CredentialStore, headers DefaultHeaders) *StorePort {
	return &StorePort{store: store, headers: headers}
}

// GetCredential may remove a corrupt stored entry, see credentials.Store.Get.
func (p *StorePort) GetCredential(ctx context.Context) (credentials.Credential, bool) {
	return p.store.Get(ctx)
}

func (p *StorePort) SetCredential(ctx context.Context, credential credentials.Credential) {
	p.store.Set(ctx, credential)
}

func (p *StorePort) ClearCredential(ctx context.Context) {
	p.store.Clear(ctx)
}

func (p *StorePort) SetDefaultAuthHeader(accessToken string) {
	p.headers.SetDefaultHeader(authorizationHeader, "Bearer "+accessToken)
}

func (p *StorePort) ClearDefaultAuthHeader() {
	p.headers.DeleteDefaultHeader(authorizationHeader)
}
