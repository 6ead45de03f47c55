package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthstone-labs/crm/internal/db/bunx"
	"github.com/hearthstone-labs/crm/internal/db/models"
	"github.com/uptrace/bun"
)

// BunClientRepository persists clients using Bun ORM.
type BunClientRepository struct {
	table ownedTable[models.Client]
}

// NewBunClientRepository constructs a repository backed by Bun.
func NewBunClientRepository(db *bun.DB) *BunClientRepository {
	return &BunClientRepository{table: ownedTable[models.Client]{db: db, resource: "client"}}
}

// Create assigns an id and timestamps, then inserts the client.
func (r *BunClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = bunx.NewUUIDv7()
	}
	if err := client.ValidateForCreate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	return r.table.insert(ctx, client)
}

// GetByID fetches a client owned by ownerID.
func (r *BunClientRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Client, error) {
	return r.table.get(ctx, r.table.db, ownerID, id)
}

// Update writes the set fields of patch and returns the stored row.
func (r *BunClientRepository) Update(ctx context.Context, ownerID, id string, patch models.ClientPatch) (*models.Client, error) {
	return r.table.update(ctx, ownerID, id, patch.Columns())
}

// Delete removes a client owned by ownerID.
func (r *BunClientRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.table.delete(ctx, ownerID, id)
}

// List returns a page of the owner's clients ordered by most recent update.
func (r *BunClientRepository) List(ctx context.Context, opts ListOptions) ([]models.Client, error) {
	return r.table.list(ctx, opts)
}

// Count returns how many clients the owner has.
func (r *BunClientRepository) Count(ctx context.Context, ownerID string) (int, error) {
	return r.table.count(ctx, ownerID)
}
