package function

import (
	"context"
	"time"

	"bakery-be/internal/order"
	"bakery-be/internal/stats"
	"bakery-be/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Create(ctx context.Context, in order.CreateInput) (*order.CreateResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CreateResult), args.Error(1)
}

func (m *MockOrders) Cancel(ctx context.Context, userID, orderID, reason string) error {
	return m.Called(ctx, userID, orderID, reason).Error(0)
}

func (m *MockOrders) AdminCancel(ctx context.Context, adminID, orderID, reason string) error {
	return m.Called(ctx, adminID, orderID, reason).Error(0)
}

func (m *MockOrders) PayWithPoints(ctx context.Context, userID, orderID string) (*order.PayResult, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PayResult), args.Error(1)
}

func (m *MockOrders) PayOffline(ctx context.Context, userID, orderID string) error {
	return m.Called(ctx, userID, orderID).Error(0)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, adminID, orderID string, to order.Status) error {
	return m.Called(ctx, adminID, orderID, to).Error(0)
}

func (m *MockOrders) StartPacking(ctx context.Context, adminID, orderID string) error {
	return m.Called(ctx, adminID, orderID).Error(0)
}

func (m *MockOrders) FinishPacking(ctx context.Context, adminID, orderID string) error {
	return m.Called(ctx, adminID, orderID).Error(0)
}

func (m *MockOrders) Dispatch(ctx context.Context, adminID, orderID string) error {
	return m.Called(ctx, adminID, orderID).Error(0)
}

func (m *MockOrders) Complete(ctx context.Context, adminID, orderID string) error {
	return m.Called(ctx, adminID, orderID).Error(0)
}

func (m *MockOrders) Get(ctx context.Context, userID, orderID string) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) AdminGet(ctx context.Context, orderID string) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrders) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockStats struct {
	mock.Mock
}

func (m *MockStats) Dashboard(ctx context.Context, now time.Time) (*stats.Dashboard, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.Dashboard), args.Error(1)
}

func (m *MockStats) SalesByTimeslot(ctx context.Context, day time.Time) ([]stats.Bucket, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.Bucket), args.Error(1)
}

func (m *MockStats) SalesByDay(ctx context.Context, from, to time.Time) ([]stats.Bucket, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.Bucket), args.Error(1)
}

func (m *MockStats) SalesByMonth(ctx context.Context, year int) ([]stats.Bucket, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.Bucket), args.Error(1)
}

func (m *MockStats) ProductRanking(ctx context.Context, from, to time.Time, limit int) ([]stats.RankItem, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.RankItem), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Profile(ctx context.Context, openID string) (*user.User, error) {
	args := m.Called(ctx, openID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUsers) PointsHistory(ctx context.Context, openID string, page, limit int) ([]*user.PointsRecord, error) {
	args := m.Called(ctx, openID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.PointsRecord), args.Error(1)
}

func (m *MockUsers) AdminLogin(ctx context.Context, username, password string) (*user.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.LoginResult), args.Error(1)
}

func (m *MockUsers) Session(ctx context.Context, openID string) (string, *user.User, error) {
	args := m.Called(ctx, openID)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*user.User), args.Error(2)
}
