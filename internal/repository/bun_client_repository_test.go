package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hearthstone-labs/crm/internal/db/dbtest"
	"github.com/hearthstone-labs/crm/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func strPtr(s string) *string { return &s }

func newClient(owner, first string) *models.Client {
	return &models.Client{
		UserID:    owner,
		Type:      "buyer",
		FirstName: first,
		LastName:  "Doe",
		Email:     first + "@example.com",
	}
}

func TestBunClientRepository_Create(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	client := newClient("user-1", "jane")
	client.LeadScore = new(int)
	*client.LeadScore = 7
	client.Preferences = json.RawMessage(`{"beds":3}`)

	require.NoError(t, repo.Create(ctx, client))
	assert.NotEmpty(t, client.ID)
	assert.False(t, client.CreatedAt.IsZero())
	assert.Equal(t, client.CreatedAt, client.UpdatedAt)

	got, err := repo.GetByID(ctx, "user-1", client.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", got.FirstName)
	require.NotNil(t, got.LeadScore)
	assert.Equal(t, 7, *got.LeadScore)
	assert.JSONEq(t, `{"beds":3}`, string(got.Preferences))
	assert.Nil(t, got.Phone)
}

func TestBunClientRepository_CreateRejectsIncompleteRows(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)

	err := repo.Create(context.Background(), &models.Client{UserID: "user-1"})
	assert.ErrorContains(t, err, "validation failed")
}

func TestBunClientRepository_OwnerScoping(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	client := newClient("owner", "ann")
	require.NoError(t, repo.Create(ctx, client))

	_, err := repo.GetByID(ctx, "intruder", client.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, "intruder", client.ID, models.ClientPatch{Notes: strPtr("hijack")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "intruder", client.ID), ErrNotFound)

	count, err := repo.Count(ctx, "intruder")
	require.NoError(t, err)
	assert.Zero(t, count)

	// The owner's row is untouched.
	got, err := repo.GetByID(ctx, "owner", client.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Notes)
}

func TestBunClientRepository_Update(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	client := newClient("user-1", "bob")
	require.NoError(t, repo.Create(ctx, client))

	time.Sleep(2 * time.Millisecond)
	updated, err := repo.Update(ctx, "user-1", client.ID, models.ClientPatch{
		Stage: strPtr("qualified"),
		Notes: strPtr("call back"),
	})
	require.NoError(t, err)

	assert.Equal(t, "bob", updated.FirstName, "unset fields keep their value")
	assert.Equal(t, "qualified", *updated.Stage)
	assert.Equal(t, "call back", *updated.Notes)
	assert.True(t, updated.UpdatedAt.After(client.UpdatedAt))
}

func TestBunClientRepository_UpdateClearsJSON(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	client := newClient("user-1", "cara")
	client.Preferences = json.RawMessage(`{"beds":2}`)
	require.NoError(t, repo.Create(ctx, client))

	updated, err := repo.Update(ctx, "user-1", client.ID, models.ClientPatch{Preferences: json.RawMessage("null")})
	require.NoError(t, err)
	assert.Nil(t, updated.Preferences)
	assert.Equal(t, map[string]any{"preferences": nil}, models.ClientPatch{Preferences: json.RawMessage("null")}.Columns())
}

func TestBunClientRepository_UpdateMissing(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)

	_, err := repo.Update(context.Background(), "user-1", "0190b3a4-7c2e-7d4a-9b7e-3f2a1c0d9e8f", models.ClientPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunClientRepository_Delete(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	client := newClient("user-1", "cat")
	require.NoError(t, repo.Create(ctx, client))

	require.NoError(t, repo.Delete(ctx, "user-1", client.ID))

	_, err := repo.GetByID(ctx, "user-1", client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "user-1", client.ID), ErrNotFound)
}

func TestBunClientRepository_ListAndCount(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		require.NoError(t, repo.Create(ctx, newClient("user-1", name)))
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, repo.Create(ctx, newClient("user-2", "z")))

	total, err := repo.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	tests := []struct {
		name     string
		opts     ListOptions
		expected []string
	}{
		{name: "first page", opts: ListOptions{OwnerID: "user-1", Offset: 0, Limit: 2}, expected: []string{"e", "d"}},
		{name: "second page", opts: ListOptions{OwnerID: "user-1", Offset: 2, Limit: 2}, expected: []string{"c", "b"}},
		{name: "partial last page", opts: ListOptions{OwnerID: "user-1", Offset: 4, Limit: 2}, expected: []string{"a"}},
		{name: "past the end", opts: ListOptions{OwnerID: "user-1", Offset: 10, Limit: 2}, expected: []string{}},
		{name: "other owner", opts: ListOptions{OwnerID: "user-2", Limit: 25}, expected: []string{"z"}},
		{name: "unknown owner", opts: ListOptions{OwnerID: "nobody", Limit: 25}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.List(ctx, tt.opts)
			require.NoError(t, err)
			require.NotNil(t, rows)

			got := make([]string, 0, len(rows))
			for _, row := range rows {
				got = append(got, row.FirstName)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBunClientRepository_UpdateMovesRowToFront(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewBunClientRepository(db)
	ctx := context.Background()

	first := newClient("user-1", "first")
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.Create(ctx, newClient("user-1", "second")))
	time.Sleep(2 * time.Millisecond)

	_, err := repo.Update(ctx, "user-1", first.ID, models.ClientPatch{Status: strPtr("active")})
	require.NoError(t, err)

	rows, err := repo.List(ctx, ListOptions{OwnerID: "user-1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
}

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestBunClientRepository_DatabaseErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("count failure is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "clients"`).WillReturnError(assert.AnError)

		_, err := NewBunClientRepository(db).Count(ctx, "user-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "count client")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result maps to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .* FROM "clients" AS "c" WHERE \(id = '42'\) AND \(user_id = 'user-1'\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewBunClientRepository(db).GetByID(ctx, "user-1", "42")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete failure is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM "clients"`).WillReturnError(assert.AnError)

		err := NewBunClientRepository(db).Delete(ctx, "user-1", "42")
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed update rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "clients"`).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err := NewBunClientRepository(db).Update(ctx, "user-1", "42", models.ClientPatch{Notes: strPtr("x")})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
