package authclient_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/edupress/go-authclient"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newBunStore(t *testing.T) *authclient.BunStore {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	assert.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store, err := authclient.NewBunStore(context.Background(), db)
	assert.NoError(t, err)

	// Shared-cache memory databases persist rows across tests in the same
	// process; start each test from a clean table.
	assert.NoError(t, store.Clear())

	return store
}

func TestBunStoreLifecycle(t *testing.T) {
	store := newBunStore(t)

	value, err := store.Get("missing")
	assert.NoError(t, err)
	assert.Equal(t, "", value)

	assert.NoError(t, store.Set(authclient.KeyAccessToken, "tok"))
	value, err = store.Get(authclient.KeyAccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "tok", value)

	assert.NoError(t, store.Remove(authclient.KeyAccessToken))
	value, err = store.Get(authclient.KeyAccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestBunStoreUpsertsOnConflict(t *testing.T) {
	store := newBunStore(t)

	assert.NoError(t, store.Set(authclient.KeyAccessToken, "first"))
	assert.NoError(t, store.Set(authclient.KeyAccessToken, "second"))

	value, err := store.Get(authclient.KeyAccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestBunStoreClear(t *testing.T) {
	store := newBunStore(t)

	assert.NoError(t, store.Set(authclient.KeyAccessToken, "tok"))
	assert.NoError(t, store.Set(authclient.KeyRefreshToken, "refresh"))
	assert.NoError(t, store.Clear())

	assert.False(t, authclient.HasAccessToken(store))
}
