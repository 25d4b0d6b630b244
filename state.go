package authclient

// SessionState identifies where the session is in its lifecycle.
// Unauthenticated is the steady "logged out" rest state; no state is
// terminal while the process runs.
type SessionState string

const (
	StateUninitialized   SessionState = "uninitialized"
	StateInitializing    SessionState = "initializing"
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticated   SessionState = "authenticated"
	StateRefreshing      SessionState = "refreshing"
)

// sessionTransitions is the allowed transition graph. Self-loops cover a
// login issued while already authenticated (re-authentication) and a logout
// issued while already logged out (no-op).
var sessionTransitions = map[SessionState]map[SessionState]struct{}{
	StateUninitialized: {
		StateInitializing: {},
	},
	StateInitializing: {
		StateUnauthenticated: {},
		StateAuthenticated:   {},
	},
	StateUnauthenticated: {
		StateUnauthenticated: {},
		StateAuthenticated:   {},
	},
	StateAuthenticated: {
		StateAuthenticated:   {},
		StateRefreshing:      {},
		StateUnauthenticated: {},
	},
	StateRefreshing: {
		StateAuthenticated:   {},
		StateUnauthenticated: {},
	},
}

func canTransition(from, to SessionState) bool {
	targets, ok := sessionTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}
