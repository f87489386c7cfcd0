package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakery-be/internal/order"
	"bakery-be/internal/uow"
	"bakery-be/internal/uow/uowtest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SalesBetween(ctx context.Context, from, to time.Time) (Sales, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(Sales), args.Error(1)
}

func (m *MockRepository) SoldOrders(ctx context.Context, from, to time.Time) ([]SoldOrder, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SoldOrder), args.Error(1)
}

func (m *MockRepository) SoldItems(ctx context.Context, from, to time.Time) ([]SoldItem, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SoldItem), args.Error(1)
}

func (m *MockRepository) StockWarningCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CountByStatus(ctx context.Context, statuses []order.Status) (map[order.Status]int, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[order.Status]int), args.Error(1)
}

func setup() (*MockRepository, Service) {
	repo := new(MockRepository)
	u := uowtest.New(map[uow.RepositoryName]uow.Repository{RepoName: Repository(repo)})
	return repo, NewService(u, time.UTC)
}

func at(s string) time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return t
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestService_Dashboard(t *testing.T) {
	// Thursday.
	now := at("2025-06-05 15:04:05")
	end := at("2025-06-06 00:00:00")

	t.Run("Fans out every figure", func(t *testing.T) {
		repo, svc := setup()

		repo.On("SalesBetween", mock.Anything, at("2025-06-05 00:00:00"), end).Return(Sales{Amount: money("10"), Count: 1}, nil)
		repo.On("SalesBetween", mock.Anything, at("2025-06-02 00:00:00"), end).Return(Sales{Amount: money("70"), Count: 5}, nil)
		repo.On("SalesBetween", mock.Anything, at("2025-06-01 00:00:00"), end).Return(Sales{Amount: money("90"), Count: 7}, nil)
		repo.On("SalesBetween", mock.Anything, at("2025-01-01 00:00:00"), end).Return(Sales{Amount: money("900"), Count: 70}, nil)
		repo.On("StockWarningCount", mock.Anything).Return(3, nil)
		repo.On("CountByStatus", mock.Anything, pendingStatuses).Return(map[order.Status]int{order.StatusPaid: 2}, nil)

		d, err := svc.Dashboard(context.Background(), now)
		require.NoError(t, err)

		assert.Equal(t, 1, d.Today.Count)
		assert.Equal(t, 5, d.Week.Count)
		assert.True(t, d.Month.Amount.Equal(money("90")))
		assert.Equal(t, 70, d.Year.Count)
		assert.Equal(t, 3, d.StockWarning)
		assert.Equal(t, 2, d.Pending["paid"])
		assert.Equal(t, 0, d.Pending["pending_pay"])
		assert.Len(t, d.Pending, len(pendingStatuses))
	})

	t.Run("Any failure fails the dashboard", func(t *testing.T) {
		repo, svc := setup()

		repo.On("SalesBetween", mock.Anything, mock.Anything, mock.Anything).Return(Sales{}, nil)
		repo.On("StockWarningCount", mock.Anything).Return(0, errors.New("db down"))
		repo.On("CountByStatus", mock.Anything, mock.Anything).Return(map[order.Status]int{}, nil)

		_, err := svc.Dashboard(context.Background(), now)
		assert.EqualError(t, err, "db down")
	})
}

func TestService_SalesByTimeslot(t *testing.T) {
	repo, svc := setup()

	repo.On("SoldOrders", mock.Anything, at("2025-06-05 00:00:00"), at("2025-06-06 00:00:00")).Return([]SoldOrder{
		{CreatedAt: at("2025-06-05 08:15:00"), PayAmount: money("12")},
		{CreatedAt: at("2025-06-05 08:45:00"), PayAmount: money("8")},
		{CreatedAt: at("2025-06-05 17:00:00"), PayAmount: money("30")},
	}, nil)

	buckets, err := svc.SalesByTimeslot(context.Background(), at("2025-06-05 13:00:00"))
	require.NoError(t, err)
	require.Len(t, buckets, 24)
	assert.Equal(t, "08:00", buckets[8].Label)
	assert.Equal(t, 2, buckets[8].Count)
	assert.True(t, buckets[8].Amount.Equal(money("20")))
	assert.Equal(t, 1, buckets[17].Count)
	assert.Zero(t, buckets[0].Count)
}

func TestService_SalesByDay(t *testing.T) {
	t.Run("Inclusive days", func(t *testing.T) {
		repo, svc := setup()

		repo.On("SoldOrders", mock.Anything, at("2025-06-01 00:00:00"), at("2025-06-04 00:00:00")).Return([]SoldOrder{
			{CreatedAt: at("2025-06-01 10:00:00"), PayAmount: money("5")},
			{CreatedAt: at("2025-06-03 23:59:00"), PayAmount: money("7")},
		}, nil)

		buckets, err := svc.SalesByDay(context.Background(), at("2025-06-01 12:00:00"), at("2025-06-03 08:00:00"))
		require.NoError(t, err)
		require.Len(t, buckets, 3)
		assert.Equal(t, "2025-06-01", buckets[0].Label)
		assert.Equal(t, 1, buckets[0].Count)
		assert.Zero(t, buckets[1].Count)
		assert.True(t, buckets[2].Amount.Equal(money("7")))
	})

	t.Run("Rejects reversed and wide ranges", func(t *testing.T) {
		_, svc := setup()

		_, err := svc.SalesByDay(context.Background(), at("2025-06-02 00:00:00"), at("2025-06-01 00:00:00"))
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = svc.SalesByDay(context.Background(), at("2023-01-01 00:00:00"), at("2025-01-01 00:00:00"))
		assert.ErrorIs(t, err, ErrRangeTooWide)
	})
}

func TestService_SalesByMonth(t *testing.T) {
	repo, svc := setup()

	repo.On("SoldOrders", mock.Anything, at("2025-01-01 00:00:00"), at("2026-01-01 00:00:00")).Return([]SoldOrder{
		{CreatedAt: at("2025-02-14 10:00:00"), PayAmount: money("99")},
		{CreatedAt: at("2025-12-31 23:00:00"), PayAmount: money("1")},
	}, nil)

	buckets, err := svc.SalesByMonth(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, buckets, 12)
	assert.Equal(t, "2025-02", buckets[1].Label)
	assert.True(t, buckets[1].Amount.Equal(money("99")))
	assert.Equal(t, 1, buckets[11].Count)

	_, err = svc.SalesByMonth(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

func TestService_ProductRanking(t *testing.T) {
	repo, svc := setup()

	repo.On("SoldItems", mock.Anything, at("2025-06-01 00:00:00"), at("2025-06-08 00:00:00")).Return([]SoldItem{
		{ProductID: "p-1", Name: "Croissant", Quantity: 3, Subtotal: money("30")},
		{ProductID: "p-2", Name: "Baguette", Quantity: 5, Subtotal: money("40")},
		{ProductID: "p-1", Name: "Croissant", Quantity: 4, Subtotal: money("40")},
		{ProductID: "p-3", Name: "Tart", Quantity: 5, Subtotal: money("90")},
	}, nil)

	ranking, err := svc.ProductRanking(context.Background(), at("2025-06-01 00:00:00"), at("2025-06-07 00:00:00"), 2)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "p-1", ranking[0].ProductID)
	assert.Equal(t, 7, ranking[0].Quantity)
	assert.True(t, ranking[0].Amount.Equal(money("70")))
	// Equal quantity: the higher amount ranks first.
	assert.Equal(t, "p-3", ranking[1].ProductID)
}
