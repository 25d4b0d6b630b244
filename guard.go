package authclient

import (
	"net/http"

	"github.com/goliatone/go-router"
)

// DecisionOutcome is the verdict a guard reaches for the current snapshot.
type DecisionOutcome string

const (
	// DecisionWait means the authentication verdict is not yet known;
	// render neither the redirect nor the protected content.
	DecisionWait DecisionOutcome = "wait"
	// DecisionAllow renders the protected subtree.
	DecisionAllow DecisionOutcome = "allow"
	// DecisionRedirectLogin sends an unauthenticated visitor to login.
	DecisionRedirectLogin DecisionOutcome = "redirect_login"
	// DecisionRedirectDenied sends an authenticated-but-unauthorized
	// visitor to the access-denied surface.
	DecisionRedirectDenied DecisionOutcome = "redirect_denied"
)

// Decision is the result of one guard evaluation.
type Decision struct {
	Outcome DecisionOutcome
	Target  string
	Account *Account
}

// GuardConfig declares one protected surface. Zero values take the defaults
// noted per field.
type GuardConfig struct {
	// AllowedRoles is the exact allow-set; empty means any authenticated
	// role.
	AllowedRoles RoleSet
	// LoginPath is where unauthenticated visitors go. Default "/login".
	LoginPath string
	// DeniedPath is where unauthorized visitors go. Default "/access-denied".
	DeniedPath string
	// ContextKey is the router locals key for the account. Default "account".
	ContextKey string
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.DeniedPath == "" {
		c.DeniedPath = "/access-denied"
	}
	if c.ContextKey == "" {
		c.ContextKey = "account"
	}
	return c
}

// Guard blocks or redirects navigation into a protected surface based on
// Manager state. The same primitive backs every policy preset; presets are
// fixed role sets, not separate mechanisms.
type Guard struct {
	manager *Manager
	cfg     GuardConfig
	logger  Logger
}

// NewGuard wraps a protected surface with the given policy.
func NewGuard(manager *Manager, cfg GuardConfig) *Guard {
	return &Guard{
		manager: manager,
		cfg:     cfg.withDefaults(),
		logger:  defLogger{},
	}
}

// WithLogger overrides the guard logger.
func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// AdminOnly gates a surface to administrators.
func AdminOnly(manager *Manager) *Guard {
	return NewGuard(manager, GuardConfig{AllowedRoles: RoleSet{RoleAdmin}})
}

// AdminStaff gates a surface to administrators and staff.
func AdminStaff(manager *Manager) *Guard {
	return NewGuard(manager, GuardConfig{AllowedRoles: RoleSet{RoleAdmin, RoleStaff}})
}

// AllStaff gates a surface to every signed-in role.
func AllStaff(manager *Manager) *Guard {
	return NewGuard(manager, GuardConfig{AllowedRoles: RoleSet{RoleAdmin, RoleStaff, RoleLecturer}})
}

// Evaluate computes the verdict for the current session snapshot.
func (g *Guard) Evaluate() Decision {
	return g.evaluate(g.manager.Snapshot())
}

func (g *Guard) evaluate(snap Snapshot) Decision {
	// No verdict while an auth operation is in flight; redirecting here
	// would bounce users whose session is about to be confirmed.
	if snap.Loading || snap.State == StateUninitialized || snap.State == StateInitializing {
		return Decision{Outcome: DecisionWait}
	}

	if !snap.Authenticated || snap.Account == nil {
		return Decision{Outcome: DecisionRedirectLogin, Target: g.cfg.LoginPath}
	}

	if !g.cfg.AllowedRoles.Empty() && !g.cfg.AllowedRoles.Contains(snap.Account.Role) {
		return Decision{Outcome: DecisionRedirectDenied, Target: g.cfg.DeniedPath}
	}

	return Decision{Outcome: DecisionAllow, Account: snap.Account}
}

// Watch re-evaluates the guard on every session notification and reports
// each fresh decision. The returned function stops watching.
func (g *Guard) Watch(onChange func(Decision)) func() {
	if onChange == nil {
		return func() {}
	}
	return g.manager.Subscribe(func(snap Snapshot) {
		onChange(g.evaluate(snap))
	})
}

// Middleware adapts the guard to a router middleware. The verdict is
// computed per request, so a session invalidated mid-visit blocks the next
// request with no extra wiring.
func (g *Guard) Middleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := g.Evaluate()

			switch decision.Outcome {
			case DecisionWait:
				return c.Status(http.StatusServiceUnavailable).SendString("authenticating")
			case DecisionRedirectLogin, DecisionRedirectDenied:
				g.logger.Info("guard blocked navigation to %s: %s", c.OriginalURL(), decision.Outcome)
				return c.Redirect(decision.Target, redirectStatus(c))
			default:
				c.Locals(g.cfg.ContextKey, decision.Account)
				c.SetContext(WithAccount(c.Context(), decision.Account))
				return next(c)
			}
		}
	}
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
