package authclient

import (
	"context"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FederatedArtifact is the authorization artifact a third-party identity
// provider hands back on its redirect callback: a code to exchange, or an
// already-minted identity token.
type FederatedArtifact struct {
	Provider string `json:"provider"`
	Code     string `json:"code,omitempty"`
	Token    string `json:"token,omitempty"`
}

// Validate requires exactly one artifact form.
func (a FederatedArtifact) Validate() error {
	err := validation.ValidateStruct(&a,
		validation.Field(&a.Provider, validation.Required),
	)
	if err != nil {
		return invalidPayload(err)
	}
	if a.Code == "" && a.Token == "" {
		return ErrMissingArtifact
	}
	return nil
}

// CallbackOutcome classifies what a provider redirect actually carried.
// Exactly one outcome holds per callback; "nothing present" is never
// success.
type CallbackOutcome string

const (
	CallbackArtifact      CallbackOutcome = "artifact"
	CallbackProviderError CallbackOutcome = "provider_error"
	CallbackEmpty         CallbackOutcome = "empty"
)

// CallbackParams are the query parameters of a provider redirect callback.
type CallbackParams struct {
	Provider         string
	Code             string
	Token            string
	ErrorCode        string
	ErrorDescription string
}

// ParseCallback extracts callback parameters from a redirect query string.
func ParseCallback(provider string, query url.Values) CallbackParams {
	return CallbackParams{
		Provider:         provider,
		Code:             query.Get("code"),
		Token:            query.Get("id_token"),
		ErrorCode:        query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}
}

// Outcome classifies the callback. A provider-reported error wins over a
// stray artifact so a denied grant is never exchanged.
func (p CallbackParams) Outcome() CallbackOutcome {
	if p.ErrorCode != "" {
		return CallbackProviderError
	}
	if p.Code != "" || p.Token != "" {
		return CallbackArtifact
	}
	return CallbackEmpty
}

// FederatedConfig configures the adapter. Zero values take the defaults
// noted per field.
type FederatedConfig struct {
	// AdminPath receives privileged roles after login. Default "/admin".
	AdminPath string
	// HomePath receives everyone else. Default "/".
	HomePath string
	// PrivilegedRoles decides who lands on AdminPath. Default: every
	// defined role (the administrative area is the product).
	PrivilegedRoles RoleSet
}

func (c FederatedConfig) withDefaults() FederatedConfig {
	if c.AdminPath == "" {
		c.AdminPath = "/admin"
	}
	if c.HomePath == "" {
		c.HomePath = "/"
	}
	if c.PrivilegedRoles == nil {
		c.PrivilegedRoles = RoleSet(AllRoles())
	}
	return c
}

// FederatedAdapter turns a provider redirect callback into a local session.
type FederatedAdapter struct {
	manager *Manager
	cfg     FederatedConfig
	logger  Logger
}

// NewFederatedAdapter binds the adapter to the session manager.
func NewFederatedAdapter(manager *Manager, cfg FederatedConfig) *FederatedAdapter {
	return &FederatedAdapter{
		manager: manager,
		cfg:     cfg.withDefaults(),
		logger:  defLogger{},
	}
}

// WithLogger overrides the adapter logger.
func (a *FederatedAdapter) WithLogger(logger Logger) *FederatedAdapter {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Complete distinguishes the three callback outcomes, exchanges an artifact
// for a session when one is present, and returns the role-based redirect
// target. Every failure surfaces as an error for the caller to render; the
// adapter never redirects back into the callback.
func (a *FederatedAdapter) Complete(ctx context.Context, params CallbackParams) (string, error) {
	switch params.Outcome() {
	case CallbackProviderError:
		a.logger.Info("identity provider %s reported error: %s", params.Provider, params.ErrorCode)
		return "", ErrProviderDenied.WithMetadata(map[string]any{
			"provider":    params.Provider,
			"code":        params.ErrorCode,
			"description": params.ErrorDescription,
		})
	case CallbackEmpty:
		return "", ErrMissingArtifact
	}

	artifact := FederatedArtifact{
		Provider: params.Provider,
		Code:     params.Code,
		Token:    params.Token,
	}

	account, err := a.manager.LoginFederated(ctx, artifact)
	if err != nil {
		a.logger.Error("federated exchange failed: %v", err)
		return "", err
	}

	if a.cfg.PrivilegedRoles.Contains(account.Role) {
		return a.cfg.AdminPath, nil
	}
	return a.cfg.HomePath, nil
}
