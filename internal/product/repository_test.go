package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{
	"id", "name", "description", "image_url", "price", "stock",
	"stock_warning", "status", "sales", "category_id", "created_at", "updated_at",
}

func newMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success with specs", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`SELECT .* FROM products WHERE id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow("p-1", "Croissant", "butter", "img", "12.50", 0, 3, "on", 7, "cat-bread", now, now))
		mock.ExpectQuery(`SELECT .* FROM product_specs WHERE product_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "name", "price", "stock"}).
				AddRow("s-1", "p-1", "6 inch", "88.00", 4).
				AddRow("s-2", "p-1", "8 inch", "128.00", 2))

		p, err := repo.GetByID(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "Croissant", p.Name)
		assert.Equal(t, StatusOn, p.Status)
		assert.Equal(t, "12.5", p.Price.String())
		require.NotNil(t, p.CategoryID)
		assert.Equal(t, "cat-bread", *p.CategoryID)
		require.Len(t, p.Specs, 2)
		assert.Equal(t, "8 inch", p.Specs[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`SELECT .* FROM products`).WillReturnRows(sqlmock.NewRows(productCols))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Query error", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`SELECT .* FROM products`).WillReturnError(errors.New("conn reset"))

		_, err := repo.GetByID(ctx, "p-1")
		assert.EqualError(t, err, "conn reset")
	})
}

func TestRepository_GetByIDs_Empty(t *testing.T) {
	repo, mock := newMock(t)

	res, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeductStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Root stock success", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE products SET stock = stock - \$1, sales = sales \+ \$1, .* WHERE id = \$2 AND status = 'on' AND stock >= \$1`).
			WithArgs(3, "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeductStock(ctx, "p-1", "", 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Root stock insufficient", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
			WithArgs(3, "p-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeductStock(ctx, "p-1", "", 3), ErrInsufficientStock)
	})

	t.Run("Spec stock success", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE product_specs SET stock = stock - \$1 WHERE id = \$2 AND product_id = \$3 AND stock >= \$1`).
			WithArgs(2, "s-1", "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET sales = sales \+ \$1`).
			WithArgs(2, "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeductStock(ctx, "p-1", "s-1", 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Spec product off shelf", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE product_specs`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET sales`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeductStock(ctx, "p-1", "s-1", 2), ErrProductOffShelf)
	})

	t.Run("DB error is wrapped", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE products`).WillReturnError(errors.New("deadlock"))

		err := repo.DeductStock(ctx, "p-1", "", 1)
		assert.ErrorContains(t, err, "deduct product stock")
	})
}

func TestRepository_RestoreStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Spec", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE product_specs SET stock = stock \+ \$1`).
			WithArgs(2, "s-1", "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET sales = GREATEST\(sales - \$1, 0\)`).
			WithArgs(2, "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RestoreStock(ctx, "p-1", "s-1", 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Deleted product is skipped", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE products SET stock = stock \+ \$1`).
			WithArgs(3, "gone").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.RestoreStock(ctx, "gone", "", 3))
	})
}

func TestRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`UPDATE products SET stock = stock \+ \$1, .* WHERE id = \$2 AND stock \+ \$1 >= 0 RETURNING stock`).
			WithArgs(-2, "p-1").
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		after, err := repo.AdjustStock(ctx, "p-1", "", -2)
		require.NoError(t, err)
		assert.Equal(t, 3, after)
	})

	t.Run("Would go negative", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`UPDATE product_specs`).
			WithArgs(-10, "s-1", "p-1").
			WillReturnRows(sqlmock.NewRows([]string{"stock"}))

		_, err := repo.AdjustStock(ctx, "p-1", "s-1", -10)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMock(t)

	p := &Product{Name: "Baguette", Status: StatusOn, Specs: []Spec{{Name: "Half"}}}

	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO product_specs`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, p.ID, p.Specs[0].ProductID)
	assert.NotEmpty(t, p.Specs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListOnSale(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM products\s+WHERE status = 'on' AND \(\$1 = '' OR category_id = \$1\)`).
		WithArgs("", 20, 0).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p-2", "Baguette", "", "", "6.00", 9, 2, "on", 30, nil, now, now))
	mock.ExpectQuery(`SELECT .* FROM product_specs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "name", "price", "stock"}))

	list, err := repo.ListOnSale(context.Background(), "", 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CategoryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetStatus_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`UPDATE products SET status = \$1`).
		WithArgs(StatusOff, "p-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SetStatus(context.Background(), "p-x", StatusOff), ErrProductNotFound)
}
