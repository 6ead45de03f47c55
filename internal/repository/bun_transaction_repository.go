package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthstone-labs/crm/internal/db/bunx"
	"github.com/hearthstone-labs/crm/internal/db/models"
	"github.com/uptrace/bun"
)

// BunTransactionRepository persists transactions using Bun ORM.
type BunTransactionRepository struct {
	table ownedTable[models.Transaction]
}

// NewBunTransactionRepository constructs a repository backed by Bun.
func NewBunTransactionRepository(db *bun.DB) *BunTransactionRepository {
	return &BunTransactionRepository{table: ownedTable[models.Transaction]{db: db, resource: "transaction"}}
}

// Create assigns an id and timestamps, then inserts the transaction.
func (r *BunTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = bunx.NewUUIDv7()
	}
	if err := txn.ValidateForCreate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	return r.table.insert(ctx, txn)
}

func (r *BunTransactionRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	return r.table.get(ctx, r.table.db, ownerID, id)
}

func (r *BunTransactionRepository) Update(ctx context.Context, ownerID, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	return r.table.update(ctx, ownerID, id, patch.Columns())
}

func (r *BunTransactionRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.table.delete(ctx, ownerID, id)
}

func (r *BunTransactionRepository) List(ctx context.Context, opts ListOptions) ([]models.Transaction, error) {
	return r.table.list(ctx, opts)
}

func (r *BunTransactionRepository) Count(ctx context.Context, ownerID string) (int, error) {
	return r.table.count(ctx, ownerID)
}
