// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/hearthstone-labs/crm/internal/db/bunx"
	"github.com/hearthstone-labs/crm/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// NewSQLite opens an in-memory database, applies every migration and closes it
// when the test ends.
func NewSQLite(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))

	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}
