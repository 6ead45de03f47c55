package migrations

import (
	"context"
	"fmt"

	"github.com/hearthstone-labs/crm/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20250601000001, down_20250601000001)
}

var crmIndexes = []struct {
	name  string
	model any
}{
	{name: "idx_clients_user_updated", model: (*models.Client)(nil)},
	{name: "idx_transactions_user_updated", model: (*models.Transaction)(nil)},
}

// up_20250601000001 creates the clients and transactions tables
func up_20250601000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating clients and transactions tables...")

	for _, model := range []any{(*models.Client)(nil), (*models.Transaction)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Owner-scoped listing filters on user_id and orders by updated_at.
	for _, idx := range crmIndexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			IfNotExists().
			Column("user_id", "updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	if IsPostgreSQL(db) {
		_, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_transactions_buyer ON transactions (buyer_client_id)`)
		if err != nil {
			return fmt.Errorf("failed to create buyer index: %w", err)
		}
	}

	fmt.Println(" OK")
	return nil
}

// down_20250601000001 drops the clients and transactions tables
func down_20250601000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping clients and transactions tables...")

	for _, model := range []any{(*models.Transaction)(nil), (*models.Client)(nil)} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	fmt.Println(" OK")
	return nil
}
