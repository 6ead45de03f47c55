package repository

import (
	"context"
	"errors"

	"github.com/hearthstone-labs/crm/internal/db/models"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

// ListOptions scopes and pages a list query.
type ListOptions struct {
	OwnerID string
	Offset  int
	Limit   int
}

// ClientRepository exposes persistence operations for clients. Every read and
// write is restricted to rows owned by the given user.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Client, error)
	Update(ctx context.Context, ownerID, id string, patch models.ClientPatch) (*models.Client, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, opts ListOptions) ([]models.Client, error)
	Count(ctx context.Context, ownerID string) (int, error)
}

// TransactionRepository exposes persistence operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Transaction, error)
	Update(ctx context.Context, ownerID, id string, patch models.TransactionPatch) (*models.Transaction, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, opts ListOptions) ([]models.Transaction, error)
	Count(ctx context.Context, ownerID string) (int, error)
}
