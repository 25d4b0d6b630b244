package authclient

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type credentialRow struct {
	bun.BaseModel `bun:"table:client_credentials,alias:cc"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

var _ CredentialStore = &BunStore{}

// BunStore keeps credentials in an embedded database, for desktop clients
// that already ship a sqlite file. Synchronous contract, internal deadlines.
type BunStore struct {
	db      *bun.DB
	timeout time.Duration
}

// NewBunStore ensures the credentials table exists and returns the store.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	if _, err := db.NewCreateTable().
		Model((*credentialRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create credentials table")
	}

	return &BunStore{db: db, timeout: 5 * time.Second}, nil
}

func (s *BunStore) Get(key string) (string, error) {
	ctx, cancel := s.opContext()
	defer cancel()

	row := new(credentialRow)
	err := s.db.NewSelect().
		Model(row).
		Where("cc.key = ?", key).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "credential read failed")
	}
	return row.Value, nil
}

func (s *BunStore) Set(key, value string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	row := &credentialRow{Key: key, Value: value}
	if _, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "credential write failed")
	}
	return nil
}

func (s *BunStore) Remove(key string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*credentialRow)(nil)).
		Where("cc.key = ?", key).
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "credential delete failed")
	}
	return nil
}

func (s *BunStore) Clear() error {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*credentialRow)(nil)).
		Where("1 = 1").
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "credential clear failed")
	}
	return nil
}

func (s *BunStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
