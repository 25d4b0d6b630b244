package authclient

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialStore is a key/value abstraction over durable client storage.
// All operations are synchronous from the Manager's perspective; backends
// that talk to remote storage resolve their own deadlines internally.
// Get returns an empty string, not an error, for absent keys.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}

// Transport performs the network calls against the backend auth authority.
// Revoke is best-effort: the Manager logs but never surfaces its failures.
type Transport interface {
	Login(ctx context.Context, creds Credentials) (*TokenPair, *Account, error)
	ExchangeFederated(ctx context.Context, artifact FederatedArtifact) (*TokenPair, *Account, error)
	Refresh(ctx context.Context) (*TokenPair, error)
	Revoke(ctx context.Context) error
	CheckValidity(ctx context.Context) (bool, error)
	GetProfile(ctx context.Context) (*Account, error)
}

// TokenPair holds the opaque credentials minted by the auth authority.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHCLIENT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHCLIENT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
