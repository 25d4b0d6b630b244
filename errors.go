package authclient

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeInvalidPayload     = "invalid_login_payload"
	TextCodeSessionInvalid     = "session_invalid"
	TextCodeRefreshRejected    = "refresh_rejected"
	TextCodeProfileUnavailable = "profile_unavailable"
	TextCodeBadTransition      = "invalid_session_transition"
	TextCodeMissingArtifact    = "federated_missing_artifact"
	TextCodeProviderDenied     = "federated_provider_denied"
	TextCodeExchangeFailed     = "federated_exchange_failed"
)

// ErrInvalidCredentials is returned when the auth authority rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrSessionInvalid is returned when an operation requires a live session and
// there is none, or when the authority no longer recognizes the stored token.
var ErrSessionInvalid = errors.New("session is not valid", errors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrRefreshRejected is returned when the refresh token is expired or revoked.
var ErrRefreshRejected = errors.New("refresh token rejected", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshRejected).
	WithCode(errors.CodeUnauthorized)

// ErrProfileUnavailable is returned when a profile fetch fails for a session
// the authority reported as valid. Treated as corrupt local state.
var ErrProfileUnavailable = errors.New("profile unavailable", errors.CategoryAuth).
	WithTextCode(TextCodeProfileUnavailable).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidSessionTransition is returned when a lifecycle operation is
// attempted from a state that does not allow it.
var ErrInvalidSessionTransition = errors.New("invalid session state transition", errors.CategoryConflict).
	WithTextCode(TextCodeBadTransition).
	WithCode(errors.CodeConflict)

// ErrMissingArtifact is returned when a federated callback carries neither an
// authorization artifact nor a provider error. Never treated as success.
var ErrMissingArtifact = errors.New("federated callback missing artifact", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingArtifact).
	WithCode(errors.CodeBadRequest)

// ErrProviderDenied is returned when the identity provider reported an error
// on its redirect callback.
var ErrProviderDenied = errors.New("identity provider denied the request", errors.CategoryAuth).
	WithTextCode(TextCodeProviderDenied).
	WithCode(errors.CodeUnauthorized)

// ErrExchangeFailed is returned when trading a federated artifact for a local
// session fails.
var ErrExchangeFailed = errors.New("federated token exchange failed", errors.CategoryAuth).
	WithTextCode(TextCodeExchangeFailed).
	WithCode(errors.CodeUnauthorized)

// invalidPayload wraps caller-supplied bad input so login forms can render
// field-level messages.
func invalidPayload(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "invalid login payload").
		WithTextCode(TextCodeInvalidPayload).
		WithCode(errors.CodeBadRequest)
}

// HasTextCode reports whether err carries the given text code.
func HasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsAuthFailure reports whether err represents a rejected or invalid session
// rather than a caller mistake.
func IsAuthFailure(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth
}
