// Package crm implements the resource operations behind the HTTP handlers:
// owner-scoped create, read, update, delete and paginated listing.
package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hearthstone-labs/crm/internal/apierr"
	"github.com/hearthstone-labs/crm/internal/db/models"
	"github.com/hearthstone-labs/crm/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence contract a resource service needs.
// repository.ClientRepository and repository.TransactionRepository satisfy it.
type Store[T any, P any] interface {
	Create(ctx context.Context, row *T) error
	GetByID(ctx context.Context, ownerID, id string) (*T, error)
	Update(ctx context.Context, ownerID, id string, patch P) (*T, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, opts repository.ListOptions) ([]T, error)
	Count(ctx context.Context, ownerID string) (int, error)
}

// Input is a decoded request body that can build a new row or a patch.
type Input[T any, P any] interface {
	Model(ownerID string) *T
	Patch() P
}

// Service implements the operations shared by every owner-scoped resource.
type Service[T any, In Input[T, P], P any] struct {
	resource     string
	repo         Store[T, P]
	defaultLimit int
}

// ClientService manages clients.
type ClientService = Service[models.Client, ClientInput, models.ClientPatch]

// TransactionService manages transactions.
type TransactionService = Service[models.Transaction, TransactionInput, models.TransactionPatch]

// NewClientService constructs a client service. defaultLimit applies when a list
// request omits limit.
func NewClientService(repo repository.ClientRepository, defaultLimit int) *ClientService {
	return newService[models.Client, ClientInput, models.ClientPatch]("Client", repo, defaultLimit)
}

// NewTransactionService constructs a transaction service.
func NewTransactionService(repo repository.TransactionRepository, defaultLimit int) *TransactionService {
	return newService[models.Transaction, TransactionInput, models.TransactionPatch]("Transaction", repo, defaultLimit)
}

func newService[T any, In Input[T, P], P any](resource string, repo Store[T, P], defaultLimit int) *Service[T, In, P] {
	if defaultLimit < 1 {
		defaultLimit = 25
	}
	return &Service[T, In, P]{resource: resource, repo: repo, defaultLimit: defaultLimit}
}

// Resource names the entity in not-found messages, e.g. "Client".
func (s *Service[T, In, P]) Resource() string {
	return s.resource
}

// List returns one page of the owner's rows plus the owner's total row count.
// Count and fetch run concurrently; either failure aborts both.
func (s *Service[T, In, P]) List(ctx context.Context, ownerID string, params PageParams) (*Page[T], error) {
	page, limit, offset := params.Resolve(s.defaultLimit)

	var (
		rows  []T
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, repository.ListOptions{OwnerID: ownerID, Offset: offset, Limit: limit})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list %s: %w", s.resource, err)
	}

	if rows == nil {
		rows = []T{}
	}
	return &Page[T]{
		Data: rows,
		Meta: Meta{Total: total, Page: page, Limit: limit},
	}, nil
}

// Create stores a new row owned by ownerID.
func (s *Service[T, In, P]) Create(ctx context.Context, ownerID string, in In) (*T, error) {
	row := in.Model(ownerID)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.resource, err)
	}
	return row, nil
}

// Get returns the owner's row with the given id.
func (s *Service[T, In, P]) Get(ctx context.Context, ownerID, id string) (*T, error) {
	if !validID(id) {
		return nil, apierr.NotFound(s.resource)
	}
	row, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapErr("get", err)
	}
	return row, nil
}

// Update applies the fields present in in and returns the stored row.
func (s *Service[T, In, P]) Update(ctx context.Context, ownerID, id string, in In) (*T, error) {
	if !validID(id) {
		return nil, apierr.NotFound(s.resource)
	}
	row, err := s.repo.Update(ctx, ownerID, id, in.Patch())
	if err != nil {
		return nil, s.mapErr("update", err)
	}
	return row, nil
}

// Delete removes the owner's row with the given id.
func (s *Service[T, In, P]) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return apierr.NotFound(s.resource)
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return s.mapErr("delete", err)
	}
	return nil
}

// validID reports whether id can name a row. Ids are UUIDs; anything else cannot
// match and must not reach a uuid column on PostgreSQL.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Service[T, In, P]) mapErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apierr.NotFound(s.resource)
	}
	return fmt.Errorf("%s %s: %w", op, s.resource, err)
}
