// Package storetest opens throwaway stores for package tests.
package storetest

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/sqlitewr"
)

// SQLite opens a private in-memory database closed at the end of the test.
func SQLite(t testing.TB) *bun.DB {
	t.Helper()

	db, err := sqlitewr.New(t.Context(), sqlitewr.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Redis returns a document store on a miniredis server living as long as the test.
func Redis(t testing.TB) *docstore.RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return docstore.NewRedisStore(client)
}
