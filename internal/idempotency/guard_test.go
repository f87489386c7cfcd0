package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGuard_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("Free key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		g := NewRedisGuard(db, time.Minute)

		mock.ExpectSetNX("bakery:order:create:u-1:r-1", 1, time.Minute).SetVal(true)

		ok, err := g.Acquire(ctx, "order:create:u-1:r-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Held key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		g := NewRedisGuard(db, time.Minute)

		mock.ExpectSetNX("bakery:k", 1, time.Minute).SetVal(false)

		ok, err := g.Acquire(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Redis error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		g := NewRedisGuard(db, time.Minute)

		mock.ExpectSetNX("bakery:k", 1, time.Minute).SetErr(errors.New("timeout"))

		_, err := g.Acquire(ctx, "k")
		assert.ErrorContains(t, err, "acquire idempotency key")
	})
}

func TestRedisGuard_Release(t *testing.T) {
	db, mock := redismock.NewClientMock()
	g := NewRedisGuard(db, time.Minute)

	mock.ExpectDel("bakery:k").SetVal(1)

	assert.NoError(t, g.Release(context.Background(), "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	ok, err := Noop{}.Acquire(context.Background(), "k")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, Noop{}.Release(context.Background(), "k"))
}
