package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/hashicorp/go-retryablehttp"
)

// HTTPTransportConfig describes the auth authority's endpoints. Zero values
// fall back to the defaults below.
type HTTPTransportConfig struct {
	BaseURL       string
	LoginPath     string // default "/auth/login"
	FederatedPath string // default "/auth/federated"
	RefreshPath   string // default "/auth/refresh"
	RevokePath    string // default "/auth/revoke"
	ValidityPath  string // default "/auth/introspect"
	ProfilePath   string // default "/accounts/me"
	Timeout       time.Duration
	RetryMax      int
}

func (c HTTPTransportConfig) withDefaults() HTTPTransportConfig {
	if c.LoginPath == "" {
		c.LoginPath = "/auth/login"
	}
	if c.FederatedPath == "" {
		c.FederatedPath = "/auth/federated"
	}
	if c.RefreshPath == "" {
		c.RefreshPath = "/auth/refresh"
	}
	if c.RevokePath == "" {
		c.RevokePath = "/auth/revoke"
	}
	if c.ValidityPath == "" {
		c.ValidityPath = "/auth/introspect"
	}
	if c.ProfilePath == "" {
		c.ProfilePath = "/accounts/me"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RetryMax == 0 {
		c.RetryMax = 2
	}
	return c
}

var _ Transport = &HTTPTransport{}

// HTTPTransport talks to the backend auth authority. It reads the credential
// store to attach the stored tokens; persisting new tokens is the Manager's
// job.
type HTTPTransport struct {
	cfg    HTTPTransportConfig
	store  CredentialStore
	client *retryablehttp.Client
	logger Logger
	now    func() time.Time
}

// NewHTTPTransport returns a transport bound to the given store.
func NewHTTPTransport(cfg HTTPTransportConfig, store CredentialStore) *HTTPTransport {
	cfg = cfg.withDefaults()

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &HTTPTransport{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: defLogger{},
		now:    time.Now,
	}
}

// WithLogger overrides the transport logger.
func (t *HTTPTransport) WithLogger(logger Logger) *HTTPTransport {
	if logger != nil {
		t.logger = logger
	}
	return t
}

type sessionResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	Account      *Account `json:"account"`
}

func (t *HTTPTransport) Login(ctx context.Context, creds Credentials) (*TokenPair, *Account, error) {
	var out sessionResponse
	status, err := t.call(ctx, http.MethodPost, t.cfg.LoginPath, creds, &out, false)
	if err != nil {
		return nil, nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, nil, ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, nil, unexpectedStatus(t.cfg.LoginPath, status)
	}

	return sessionFromResponse(out)
}

func (t *HTTPTransport) ExchangeFederated(ctx context.Context, artifact FederatedArtifact) (*TokenPair, *Account, error) {
	var out sessionResponse
	status, err := t.call(ctx, http.MethodPost, t.cfg.FederatedPath, artifact, &out, false)
	if err != nil {
		return nil, nil, errors.Wrap(err, ErrExchangeFailed.Category, ErrExchangeFailed.Message).
			WithTextCode(ErrExchangeFailed.TextCode)
	}
	if status != http.StatusOK {
		return nil, nil, ErrExchangeFailed.WithMetadata(map[string]any{
			"status": status,
		})
	}

	return sessionFromResponse(out)
}

func (t *HTTPTransport) Refresh(ctx context.Context) (*TokenPair, error) {
	refresh, err := t.store.Get(KeyRefreshToken)
	if err != nil || refresh == "" {
		return nil, ErrRefreshRejected
	}

	payload := map[string]string{"refresh_token": refresh}

	var out sessionResponse
	status, err := t.call(ctx, http.MethodPost, t.cfg.RefreshPath, payload, &out, false)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrRefreshRejected
	}
	if status != http.StatusOK {
		return nil, unexpectedStatus(t.cfg.RefreshPath, status)
	}
	if out.AccessToken == "" {
		return nil, ErrRefreshRejected
	}

	return &TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

func (t *HTTPTransport) Revoke(ctx context.Context) error {
	refresh, err := t.store.Get(KeyRefreshToken)
	if err != nil || refresh == "" {
		return nil
	}

	payload := map[string]string{"refresh_token": refresh}
	status, err := t.call(ctx, http.MethodPost, t.cfg.RevokePath, payload, nil, true)
	if err != nil {
		return err
	}
	if status >= http.StatusInternalServerError {
		return unexpectedStatus(t.cfg.RevokePath, status)
	}
	return nil
}

// CheckValidity asks the authority whether the stored access token is still
// good. A token a local unverified peek proves expired is rejected without a
// round trip. Callers treat any returned error as "invalid".
func (t *HTTPTransport) CheckValidity(ctx context.Context) (bool, error) {
	token, err := t.store.Get(KeyAccessToken)
	if err != nil || token == "" {
		return false, nil
	}

	if tokenExpired(token, t.now()) {
		t.logger.Debug("access token expired locally, skipping validity round trip")
		return false, nil
	}

	var out struct {
		Valid bool `json:"valid"`
	}
	status, err := t.call(ctx, http.MethodGet, t.cfg.ValidityPath, nil, &out, true)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, nil
	}
	return out.Valid, nil
}

func (t *HTTPTransport) GetProfile(ctx context.Context) (*Account, error) {
	var account Account
	status, err := t.call(ctx, http.MethodGet, t.cfg.ProfilePath, nil, &account, true)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || status == http.StatusUnauthorized {
		return nil, ErrProfileUnavailable
	}
	if status != http.StatusOK {
		return nil, unexpectedStatus(t.cfg.ProfilePath, status)
	}
	if err := account.Validate(); err != nil {
		return nil, errors.Wrap(err, ErrProfileUnavailable.Category, ErrProfileUnavailable.Message).
			WithTextCode(ErrProfileUnavailable.TextCode)
	}
	return &account, nil
}

// call issues one request and decodes the body into out when provided.
// withAuth attaches the stored access token as a Bearer header.
func (t *HTTPTransport) call(ctx context.Context, method, path string, in, out any, withAuth bool) (int, error) {
	var body []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, errors.CategoryInternal, "failed to encode request body")
		}
		body = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, t.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if withAuth {
		token, err := t.store.Get(KeyAccessToken)
		if err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryAuth, "auth authority unreachable").
			WithCode(errors.CodeUnauthorized)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, errors.CategoryInternal, "failed to decode response body")
		}
	}

	return resp.StatusCode, nil
}

func sessionFromResponse(out sessionResponse) (*TokenPair, *Account, error) {
	if out.AccessToken == "" || out.Account == nil {
		return nil, nil, ErrSessionInvalid
	}
	if err := out.Account.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, ErrSessionInvalid.Category, ErrSessionInvalid.Message).
			WithTextCode(ErrSessionInvalid.TextCode)
	}

	tokens := &TokenPair{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
	return tokens, out.Account, nil
}

func unexpectedStatus(path string, status int) error {
	return errors.New("unexpected auth authority response", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithMetadata(map[string]any{
			"path":   path,
			"status": status,
		})
}
