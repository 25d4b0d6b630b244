package authclient

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// FederatedControllerConfig configures the callback HTTP surface.
type FederatedControllerConfig struct {
	// CallbackPath is the redirect target registered with the provider.
	// Default "/auth/:provider/callback".
	CallbackPath string
	// ErrorView is the template rendered on failure. Default "errors/auth".
	ErrorView string
	// RetryPath is the manual retry affordance on the error view.
	// Default "/login".
	RetryPath string
}

func (c FederatedControllerConfig) withDefaults() FederatedControllerConfig {
	if c.CallbackPath == "" {
		c.CallbackPath = "/auth/:provider/callback"
	}
	if c.ErrorView == "" {
		c.ErrorView = "errors/auth"
	}
	if c.RetryPath == "" {
		c.RetryPath = "/login"
	}
	return c
}

// FederatedController handles the provider redirect callback over HTTP.
type FederatedController struct {
	adapter *FederatedAdapter
	cfg     FederatedControllerConfig
	logger  Logger
}

// NewFederatedController wraps the adapter with an HTTP surface.
func NewFederatedController(adapter *FederatedAdapter, cfg FederatedControllerConfig) *FederatedController {
	return &FederatedController{
		adapter: adapter,
		cfg:     cfg.withDefaults(),
		logger:  defLogger{},
	}
}

// WithLogger overrides the controller logger.
func (c *FederatedController) WithLogger(logger Logger) *FederatedController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes mounts the callback route.
func (c *FederatedController) RegisterRoutes(group RouteRegistrar) {
	group.Get(c.cfg.CallbackPath, c.Callback)
}

// Callback completes the federated flow. Success redirects by role; any
// failure renders the error view with a retry link, never a redirect back
// into the callback (which would loop).
func (c *FederatedController) Callback(ctx router.Context) error {
	params := CallbackParams{
		Provider:         ctx.Param("provider"),
		Code:             ctx.Query("code", ""),
		Token:            ctx.Query("id_token", ""),
		ErrorCode:        ctx.Query("error", ""),
		ErrorDescription: ctx.Query("error_description", ""),
	}

	redirect, err := c.adapter.Complete(ctx.Context(), params)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.Redirect(redirect, http.StatusTemporaryRedirect)
}

func (c *FederatedController) renderError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "federated login failed").
			WithCode(errors.CodeUnauthorized)
	}

	c.logger.Info(
		"federated callback failed (%s): %s %s",
		richErr.TextCode,
		richErr.Message,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	status := richErr.Code
	if status == 0 {
		status = http.StatusUnauthorized
	}

	return ctx.Status(status).Render(c.cfg.ErrorView, router.ViewContext{
		"error":     richErr,
		"retry_url": c.cfg.RetryPath,
	})
}
