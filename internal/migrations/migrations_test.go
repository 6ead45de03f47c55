package migrations

import (
	"context"
	"testing"

	"github.com/hearthstone-labs/crm/internal/db/bunx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
)

func TestMigrations_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:", 1)
	require.NoError(t, err)
	defer bunx.Close(db)

	assert.True(t, IsSQLite(db))
	assert.False(t, IsPostgreSQL(db))

	migrator := migrate.NewMigrator(db, Migrations)
	require.NoError(t, migrator.Init(ctx))

	group, err := migrator.Migrate(ctx)
	require.NoError(t, err)
	require.False(t, group.IsZero())

	for _, table := range []string{"clients", "transactions"} {
		var count int
		err := db.NewSelect().TableExpr(table).ColumnExpr("count(*)").Scan(ctx, &count)
		require.NoError(t, err, table)
		assert.Zero(t, count)
	}

	_, err = migrator.Rollback(ctx)
	require.NoError(t, err)

	var count int
	err = db.NewSelect().TableExpr("clients").ColumnExpr("count(*)").Scan(ctx, &count)
	assert.Error(t, err)
}
