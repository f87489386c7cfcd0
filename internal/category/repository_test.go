package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryCols = []string{"id", "name", "position", "created_at"}

func newMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Ordered by position", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`SELECT id, name, position, created_at FROM categories ORDER BY position ASC, name ASC`).
			WillReturnRows(sqlmock.NewRows(categoryCols).
				AddRow("c-1", "Bread", 0, now).
				AddRow("c-2", "Cakes", 1, now))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Cakes", list[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty is not nil", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(`FROM categories`).WillReturnRows(sqlmock.NewRows(categoryCols))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("Query error", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectQuery(`FROM categories`).WillReturnError(errors.New("conn reset"))

		_, err := repo.List(ctx)
		assert.ErrorContains(t, err, "list categories")
	})
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM categories\s+WHERE id = \$1`).
		WithArgs("c-x").
		WillReturnRows(sqlmock.NewRows(categoryCols))

	_, err := repo.Get(context.Background(), "c-x")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns an id", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO categories`).
			WithArgs(sqlmock.AnyArg(), "Bread", 2, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c := &Category{Name: "Bread", Position: 2}
		require.NoError(t, repo.Create(ctx, c))
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())
	})

	t.Run("Duplicate name", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO categories`).WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &Category{Name: "Bread"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`UPDATE categories SET name = \$1, position = \$2 WHERE id = \$3`).
		WithArgs("Bread", 0, "c-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &Category{ID: "c-x", Name: "Bread"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE products SET category_id = NULL WHERE category_id = \$1`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "c-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
