package authclient

import (
	"context"
	"sort"
	"sync"
)

// Snapshot is an immutable view of the session handed to subscribers and
// guards. Authenticated is recomputed at snapshot time from the in-memory
// account AND the persisted access token, never cached independently.
type Snapshot struct {
	State         SessionState
	Account       *Account
	Loading       bool
	Authenticated bool
}

// Manager owns the in-memory session and its lifecycle. It is the single
// source of truth for "is a user currently authenticated, and who are they".
// One Manager exists per running client process; consumers receive it by
// reference, they never construct their own.
//
// Login and Logout are not safe against racing each other; the UI is
// expected to disable the triggering controls while a snapshot reports
// Loading. Transitions are applied in the order their triggering operations
// complete, not the order they were initiated.
type Manager struct {
	transport Transport
	store     CredentialStore
	logger    Logger
	terminate func()

	mu      sync.RWMutex
	state   SessionState
	account *Account
	loading bool

	initOnce sync.Once
	initErr  error

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager returns a manager in the Uninitialized state.
func NewManager(transport Transport, store CredentialStore) *Manager {
	return &Manager{
		transport: transport,
		store:     store,
		logger:    defLogger{},
		terminate: func() {},
		state:     StateUninitialized,
		subs:      make(map[int]func(Snapshot)),
	}
}

// WithLogger overrides the manager logger.
func (m *Manager) WithLogger(logger Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithTerminateHandler sets the hook invoked after Logout has cleared all
// state. The hook must discard every process-local cache the application
// holds (typically by restarting the client application's root); leaving
// role-gated state mounted after logout is a security bug, not a cosmetic
// one.
func (m *Manager) WithTerminateHandler(fn func()) *Manager {
	if fn != nil {
		m.terminate = fn
	}
	return m
}

// Initialize restores a persisted session, if any. It runs its body exactly
// once per process; later calls observe the first outcome without issuing
// network calls. The loading flag is cleared exactly once on every exit
// path.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.initErr = m.initialize(ctx)
	})
	return m.initErr
}

func (m *Manager) initialize(ctx context.Context) error {
	if err := m.apply(StateInitializing, func() { m.loading = true }); err != nil {
		return err
	}
	defer m.setLoading(false)

	token, err := m.store.Get(KeyAccessToken)
	if err != nil {
		m.logger.Error("credential store read failed during init: %v", err)
		token = ""
	}

	// Guest is the common case; settle it without a round trip.
	if token == "" {
		return m.apply(StateUnauthenticated, nil)
	}

	valid, err := m.transport.CheckValidity(ctx)
	if err != nil || !valid {
		if err != nil {
			m.logger.Info("validity check failed, discarding persisted session: %v", err)
		}
		// The server already rejected this token; leaving it on disk would
		// just replay the failure on the next start.
		m.logout(ctx)
		return nil
	}

	if cached, ok := ReadAccountSnapshot(m.store); ok && cached.Complete() {
		return m.apply(StateAuthenticated, func() { m.account = cached })
	}

	profile, err := m.transport.GetProfile(ctx)
	if err != nil {
		// Valid token but no usable identity: local state is not trusted
		// over server state.
		m.logger.Warn("profile fetch failed after valid token, forcing logout: %v", err)
		m.logout(ctx)
		return nil
	}

	if err := WriteAccountSnapshot(m.store, profile); err != nil {
		m.logger.Warn("failed to cache account snapshot: %v", err)
	}

	return m.apply(StateAuthenticated, func() { m.account = profile })
}

// Login authenticates with direct credentials. Transport failures are
// returned to the caller so a login form can display them; the session is
// left untouched on failure.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Account, error) {
	if err := creds.Validate(); err != nil {
		return nil, invalidPayload(err)
	}

	m.setLoading(true)
	defer m.setLoading(false)

	tokens, account, err := m.transport.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	return m.establish(tokens, account)
}

// LoginFederated authenticates with an artifact obtained from a third-party
// identity provider's redirect callback.
func (m *Manager) LoginFederated(ctx context.Context, artifact FederatedArtifact) (*Account, error) {
	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	m.setLoading(true)
	defer m.setLoading(false)

	tokens, account, err := m.transport.ExchangeFederated(ctx, artifact)
	if err != nil {
		return nil, err
	}

	return m.establish(tokens, account)
}

// establish persists the minted session and publishes it. A persisted write
// failing after a successful round trip is a known gap: the in-memory
// session survives for this process but will not outlive a reload. Logged,
// not recovered (open hardening item).
func (m *Manager) establish(tokens *TokenPair, account *Account) (*Account, error) {
	// Reject before anything touches the store, so a login from a state
	// that does not allow it leaves no partial credential set behind.
	m.mu.RLock()
	from := m.state
	m.mu.RUnlock()
	if !canTransition(from, StateAuthenticated) {
		return nil, ErrInvalidSessionTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(StateAuthenticated),
		})
	}

	if err := WriteTokenPair(m.store, tokens); err != nil {
		m.logger.Error("failed to persist tokens, session will not survive a reload: %v", err)
	}
	// The minimal snapshot does not always carry the email, so keep a
	// denormalized copy under its own key.
	if err := m.store.Set(KeyAccountEmail, account.Email); err != nil {
		m.logger.Warn("failed to persist account email: %v", err)
	}
	if err := WriteAccountSnapshot(m.store, account); err != nil {
		m.logger.Warn("failed to cache account snapshot: %v", err)
	}

	if err := m.apply(StateAuthenticated, func() { m.account = cloneAccount(account) }); err != nil {
		return nil, err
	}

	return cloneAccount(account), nil
}

// Logout tears the session down unconditionally: revoke is best-effort, the
// local clear always happens, and the terminate hook runs last so the
// application discards every process-local cache. Logout never fails
// outwardly.
func (m *Manager) Logout(ctx context.Context) {
	m.setLoading(true)
	m.logout(ctx)
	m.setLoading(false)
	m.terminate()
}

// logout is the shared teardown used by Logout and by internal forced
// logouts (failed init, failed refresh). It does not run the terminate
// hook.
func (m *Manager) logout(ctx context.Context) {
	// Revoke reads the stored refresh token, so it must run before Clear.
	if err := m.transport.Revoke(ctx); err != nil {
		m.logger.Warn("best-effort token revoke failed: %v", err)
	}

	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear credential store: %v", err)
	}

	if err := m.apply(StateUnauthenticated, func() { m.account = nil }); err != nil {
		m.logger.Error("logout transition rejected: %v", err)
	}
}

// Refresh mints a new token pair. On failure the session is torn down
// before the error is returned, so a caller reacting to a 401 knows the
// session is gone.
func (m *Manager) Refresh(ctx context.Context) error {
	if err := m.apply(StateRefreshing, func() { m.loading = true }); err != nil {
		return err
	}
	defer m.setLoading(false)

	tokens, err := m.transport.Refresh(ctx)
	if err != nil {
		m.logout(ctx)
		return err
	}

	if err := WriteTokenPair(m.store, tokens); err != nil {
		m.logger.Error("failed to persist refreshed tokens: %v", err)
	}

	return m.apply(StateAuthenticated, nil)
}

// IsAuthenticated derives the verdict on every read: an in-memory account
// AND a persisted access token. Never cached, so an out-of-band token
// removal is observed immediately.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	account := m.account
	m.mu.RUnlock()
	return account != nil && HasAccessToken(m.store)
}

// IsLoading reports whether a state-changing operation is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// CurrentAccount returns a copy of the authenticated account, if any.
func (m *Manager) CurrentAccount() (*Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.account == nil {
		return nil, false
	}
	return cloneAccount(m.account), true
}

// State returns the current lifecycle state.
func (m *Manager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot captures the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	snap := m.snapshotLocked()
	m.mu.RUnlock()
	return snap
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		State:         m.state,
		Account:       cloneAccount(m.account),
		Loading:       m.loading,
		Authenticated: m.account != nil && HasAccessToken(m.store),
	}
}

// Subscribe registers an observer invoked after every applied transition and
// loading change. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// apply performs a validated transition plus state mutation under the lock,
// then notifies subscribers.
func (m *Manager) apply(to SessionState, mutate func()) error {
	m.mu.Lock()
	if !canTransition(m.state, to) {
		from := m.state
		m.mu.Unlock()
		return ErrInvalidSessionTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(to),
		})
	}
	m.state = to
	if mutate != nil {
		mutate()
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	if m.loading == loading {
		m.mu.Unlock()
		return
	}
	m.loading = loading
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

// notify invokes subscribers outside the state lock, in registration order.
func (m *Manager) notify(snap Snapshot) {
	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
