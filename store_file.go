package authclient

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const secretboxNonceSize = 24

// ErrStoreCorrupt is returned when the credential file cannot be decoded or
// decrypted. Callers usually recover by clearing the store.
var ErrStoreCorrupt = errors.New("credential store corrupt", errors.CategoryInternal).
	WithTextCode("credential_store_corrupt").
	WithCode(errors.CodeInternal)

var _ CredentialStore = &FileStore{}

// FileStore persists credentials as a JSON document on disk. Writes go
// through a temp file plus rename so a crash never leaves a torn file.
// With an encryption key configured the document is sealed with
// nacl/secretbox before it touches disk.
type FileStore struct {
	path string
	key  *[32]byte

	mu     sync.Mutex
	values map[string]string
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore) error

// WithEncryptionKey seals the on-disk document with the given 32-byte key.
func WithEncryptionKey(key []byte) FileStoreOption {
	return func(s *FileStore) error {
		if len(key) != 32 {
			return errors.New("encryption key must be 32 bytes", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
		}
		s.key = new([32]byte)
		copy(s.key[:], key)
		return nil
	}
}

// NewFileStore opens (or lazily creates) the credential file at path.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.persist()
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.persist()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return s.persist()
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read credential file")
	}

	if len(raw) == 0 {
		return nil
	}

	if s.key != nil {
		raw, err = s.open(raw)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(raw, &s.values); err != nil {
		return errors.Wrap(err, ErrStoreCorrupt.Category, ErrStoreCorrupt.Message).
			WithTextCode(ErrStoreCorrupt.TextCode)
	}

	return nil
}

func (s *FileStore) persist() error {
	raw, err := json.Marshal(s.values)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode credential file")
	}

	if s.key != nil {
		raw, err = s.seal(raw)
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to stage credential file")
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CategoryInternal, "failed to write credential file")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CategoryInternal, "failed to flush credential file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CategoryInternal, "failed to replace credential file")
	}

	return nil
}

func (s *FileStore) seal(plain []byte) ([]byte, error) {
	var nonce [secretboxNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate nonce")
	}
	return secretbox.Seal(nonce[:], plain, &nonce, s.key), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < secretboxNonceSize {
		return nil, ErrStoreCorrupt
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], sealed[:secretboxNonceSize])

	plain, ok := secretbox.Open(nil, sealed[secretboxNonceSize:], &nonce, s.key)
	if !ok {
		return nil, ErrStoreCorrupt
	}
	return plain, nil
}
