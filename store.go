package authclient

import (
	"encoding/json"
	"sync"
)

// Keys of interest in a CredentialStore.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyAccountEmail    = "account_email"
	KeyAccountSnapshot = "account_snapshot"
)

// HasAccessToken reports whether the store currently holds a non-empty
// access token. Presence is necessary but not sufficient for a valid
// session; validity is confirmed once per process via the transport.
func HasAccessToken(store CredentialStore) bool {
	token, err := store.Get(KeyAccessToken)
	return err == nil && token != ""
}

// WriteTokenPair persists both tokens.
func WriteTokenPair(store CredentialStore, tokens *TokenPair) error {
	if err := store.Set(KeyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	return store.Set(KeyRefreshToken, tokens.RefreshToken)
}

// ReadAccountSnapshot loads the cached minimal account record, if any.
func ReadAccountSnapshot(store CredentialStore) (*Account, bool) {
	raw, err := store.Get(KeyAccountSnapshot)
	if err != nil || raw == "" {
		return nil, false
	}

	var account Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, false
	}
	return &account, true
}

// WriteAccountSnapshot caches the minimal account record so a reload does
// not need a profile round trip.
func WriteAccountSnapshot(store CredentialStore, account *Account) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return store.Set(KeyAccountSnapshot, string(raw))
}

var _ CredentialStore = &MemoryStore{}

// MemoryStore keeps credentials for the process lifetime only. Useful for
// tests and for ephemeral sessions that should never touch disk.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}
