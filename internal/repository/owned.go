package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ownedTable implements the owner-scoped queries shared by every resource table.
// T is the bun model struct; each table has id, user_id and updated_at columns.
type ownedTable[T any] struct {
	db       *bun.DB
	resource string
}

func (o ownedTable[T]) insert(ctx context.Context, row *T) error {
	if _, err := o.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert %s: %w", o.resource, err)
	}
	return nil
}

func (o ownedTable[T]) get(ctx context.Context, idb bun.IDB, ownerID, id string) (*T, error) {
	row := new(T)
	err := idb.NewSelect().
		Model(row).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query %s: %w", o.resource, err)
	}
	return row, nil
}

// update applies cols to the owned row and returns it re-read, inside one transaction.
func (o ownedTable[T]) update(ctx context.Context, ownerID, id string, cols map[string]any) (*T, error) {
	var updated *T
	err := o.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*T)(nil)).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Where("user_id = ?", ownerID)
		for col, val := range cols {
			q = q.Set("? = ?", bun.Ident(col), val)
		}

		result, err := q.Exec(ctx)
		if err != nil {
			return fmt.Errorf("update %s: %w", o.resource, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}

		updated, err = o.get(ctx, tx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (o ownedTable[T]) delete(ctx context.Context, ownerID, id string) error {
	result, err := o.db.NewDelete().
		Model((*T)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete %s: %w", o.resource, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// list returns one page of the owner's rows, most recently updated first.
func (o ownedTable[T]) list(ctx context.Context, opts ListOptions) ([]T, error) {
	var rows []T
	q := o.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", opts.OwnerID).
		Order("updated_at DESC", "id DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit).Offset(opts.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list %s: %w", o.resource, err)
	}

	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (o ownedTable[T]) count(ctx context.Context, ownerID string) (int, error) {
	n, err := o.db.NewSelect().
		Model((*T)(nil)).
		Where("user_id = ?", ownerID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", o.resource, err)
	}
	return n, nil
}
