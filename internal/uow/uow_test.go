package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterRepo struct {
	db DBTX
}

func (r *counterRepo) Bump(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "UPDATE counters SET n = n + 1")
	return err
}

const counterRepoName RepositoryName = "counter"

func newUOW(t *testing.T) (*UnitOfWork, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	u := New(db)
	require.NoError(t, u.Register(counterRepoName, func(conn DBTX) Repository {
		return &counterRepo{db: conn}
	}))
	return u, mock
}

func TestUnitOfWork_Register(t *testing.T) {
	u, _ := newUOW(t)

	err := u.Register(counterRepoName, func(conn DBTX) Repository { return nil })
	assert.ErrorIs(t, err, ErrRepositoryAlreadyRegistered)
}

func TestUnitOfWork_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		u, mock := newUOW(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE counters").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := u.Do(ctx, func(ctx context.Context, tx TX) error {
			repo, err := GetAs[*counterRepo](tx, counterRepoName)
			if err != nil {
				return err
			}
			return repo.Bump(ctx)
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		u, mock := newUOW(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE counters").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := u.Do(ctx, func(ctx context.Context, tx TX) error {
			repo, err := GetAs[*counterRepo](tx, counterRepoName)
			if err != nil {
				return err
			}
			if err := repo.Bump(ctx); err != nil {
				return err
			}
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin fails", func(t *testing.T) {
		u, mock := newUOW(t)
		mock.ExpectBegin().WillReturnError(errors.New("no conn"))

		err := u.Do(ctx, func(ctx context.Context, tx TX) error { return nil })
		assert.ErrorContains(t, err, "begin transaction")
	})

	t.Run("Commit fails", func(t *testing.T) {
		u, mock := newUOW(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err := u.Do(ctx, func(ctx context.Context, tx TX) error { return nil })
		assert.ErrorContains(t, err, "commit transaction")
	})
}

func TestGetAs(t *testing.T) {
	u, mock := newUOW(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_ = u.Do(context.Background(), func(ctx context.Context, tx TX) error {
		_, err := GetAs[*counterRepo](tx, "missing")
		assert.ErrorIs(t, err, ErrRepositoryNotRegistered)

		_, err = GetAs[string](tx, counterRepoName)
		assert.ErrorIs(t, err, ErrInvalidRepositoryType)
		return errors.New("stop")
	})
}

func TestGetRepositoryAs(t *testing.T) {
	u, _ := newUOW(t)

	repo, err := GetRepositoryAs[*counterRepo](u, counterRepoName)
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = GetRepositoryAs[*counterRepo](u, "missing")
	assert.ErrorIs(t, err, ErrRepositoryNotRegistered)
}
