package order

import (
	"context"
	"sync"
	"time"

	"bakery-be/internal/address"
	"bakery-be/internal/audit"
	"bakery-be/internal/cart"
	"bakery-be/internal/coupon"
	"bakery-be/internal/user"

	"github.com/google/uuid"
)

// In-memory repositories backing the service tests.

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func newMemOrders() *memOrders { return &memOrders{orders: map[string]*Order{}} }

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	return &cp
}

func (m *memOrders) Insert(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	m.orders[o.ID] = cloneOrder(o)
	return nil
}

func (m *memOrders) Get(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (m *memOrders) List(_ context.Context, f ListFilter, limit, offset int) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Order
	for _, o := range m.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		res = append(res, cloneOrder(o))
	}
	return res, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, from Status, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return ErrStatusChanged
	}
	o.Status = p.Status
	if p.PaymentType != nil {
		o.PaymentType = *p.PaymentType
	}
	if p.PointsDeducted != nil {
		o.PointsDeducted = *p.PointsDeducted
	}
	if p.CancelReason != nil {
		o.CancelReason = *p.CancelReason
	}
	set := func(dst **time.Time, v *time.Time) {
		if v != nil {
			*dst = v
		}
	}
	set(&o.PaidAt, p.PaidAt)
	set(&o.PackStartTime, p.PackStartTime)
	set(&o.PackEndTime, p.PackEndTime)
	set(&o.DispatchedAt, p.DispatchedAt)
	set(&o.CompletedAt, p.CompletedAt)
	set(&o.CancelledAt, p.CancelledAt)
	set(&o.RefundedAt, p.RefundedAt)
	return nil
}

func (m *memOrders) status(id string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].Status
}

type memCoupons struct {
	templates map[string]*coupon.Coupon
	owned     map[string]*coupon.UserCoupon
}

func (m *memCoupons) GetTemplate(_ context.Context, id string) (*coupon.Coupon, error) {
	c, ok := m.templates[id]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	return c, nil
}

func (m *memCoupons) CreateTemplate(_ context.Context, c *coupon.Coupon) error {
	m.templates[c.ID] = c
	return nil
}

func (m *memCoupons) GetUserCoupon(_ context.Context, id string) (*coupon.UserCoupon, error) {
	uc, ok := m.owned[id]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	cp := *uc
	cp.Coupon = m.templates[uc.CouponID]
	return &cp, nil
}

func (m *memCoupons) ListByUser(_ context.Context, userID string) ([]*coupon.UserCoupon, error) {
	var res []*coupon.UserCoupon
	for _, uc := range m.owned {
		if uc.UserID == userID {
			res = append(res, uc)
		}
	}
	return res, nil
}

func (m *memCoupons) Issue(_ context.Context, uc *coupon.UserCoupon) error {
	m.owned[uc.ID] = uc
	return nil
}

func (m *memCoupons) MarkUsed(_ context.Context, id, userID, orderID string, at time.Time) error {
	uc, ok := m.owned[id]
	if !ok || uc.UserID != userID || uc.Status != coupon.StatusUnused {
		return coupon.ErrCouponUnavailable
	}
	uc.Status = coupon.StatusUsed
	uc.OrderID = &orderID
	uc.UsedAt = &at
	return nil
}

func (m *memCoupons) Reopen(_ context.Context, id, orderID string) error {
	uc, ok := m.owned[id]
	if !ok || uc.Status != coupon.StatusUsed || uc.OrderID == nil || *uc.OrderID != orderID {
		return nil
	}
	uc.Status = coupon.StatusUnused
	uc.OrderID = nil
	uc.UsedAt = nil
	return nil
}

type memUsers struct {
	users map[string]*user.User
}

func (m *memUsers) GetByOpenID(_ context.Context, openID string) (*user.User, error) {
	u, ok := m.users[openID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Ensure(ctx context.Context, openID string) (*user.User, error) {
	if _, ok := m.users[openID]; !ok {
		m.users[openID] = &user.User{OpenID: openID, Role: user.RoleUser}
	}
	return m.GetByOpenID(ctx, openID)
}

func (m *memUsers) DeductPoints(_ context.Context, openID string, amount int64) (int64, error) {
	u, ok := m.users[openID]
	if !ok || u.Points < amount {
		return 0, user.ErrInsufficientPoints
	}
	u.Points -= amount
	return u.Points, nil
}

func (m *memUsers) AddPoints(_ context.Context, openID string, amount int64) (int64, error) {
	u, ok := m.users[openID]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	u.Points += amount
	return u.Points, nil
}

func (m *memUsers) FindAdminByUsername(context.Context, string) (*user.Admin, error) {
	return nil, user.ErrInvalidCredentials
}

type memPoints struct {
	records []*user.PointsRecord
}

func (m *memPoints) Insert(_ context.Context, rec *user.PointsRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memPoints) ListByUser(context.Context, string, int, int) ([]*user.PointsRecord, error) {
	return m.records, nil
}

type memCart struct {
	purchased []cart.Key
}

func (m *memCart) Get(context.Context, string, string) (*cart.CartItem, error) {
	return nil, cart.ErrCartItemNotFound
}

func (m *memCart) GetByKey(context.Context, string, cart.Key) (*cart.CartItem, error) {
	return nil, nil
}

func (m *memCart) ListByUser(context.Context, string) ([]*cart.CartItem, error) { return nil, nil }
func (m *memCart) Create(context.Context, *cart.CartItem) error                { return nil }
func (m *memCart) UpdateQuantity(context.Context, string, string, int) error   { return nil }
func (m *memCart) Remove(context.Context, string, string) error                { return nil }

func (m *memCart) DeletePurchased(_ context.Context, _ string, keys []cart.Key) error {
	m.purchased = append(m.purchased, keys...)
	return nil
}

type memAddress struct {
	list map[string]*address.Address
}

func (m *memAddress) ListByUser(context.Context, string) ([]*address.Address, error) { return nil, nil }

func (m *memAddress) GetByID(_ context.Context, id string) (*address.Address, error) {
	a, ok := m.list[id]
	if !ok {
		return nil, address.ErrAddressNotFound
	}
	return a, nil
}

func (m *memAddress) Create(context.Context, *address.Address) error   { return nil }
func (m *memAddress) Deactivate(context.Context, string, string) error { return nil }
func (m *memAddress) ClearDefault(context.Context, string) error       { return nil }

type memAudit struct {
	logs []*audit.Log
}

func (m *memAudit) Insert(_ context.Context, l *audit.Log) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *memAudit) ListByTarget(context.Context, string) ([]*audit.Log, error) {
	return m.logs, nil
}

type recordingMetrics struct {
	created   int
	cancelled []string
	points    int64
	changes   []string
}

func (r *recordingMetrics) OrderCreated(string, float64) { r.created++ }
func (r *recordingMetrics) OrderCancelled(by string)     { r.cancelled = append(r.cancelled, by) }
func (r *recordingMetrics) PointsPaid(p int64)           { r.points += p }
func (r *recordingMetrics) StatusChanged(from, to string) {
	r.changes = append(r.changes, from+"->"+to)
}

type memGuard struct {
	held     map[string]bool
	released []string
}

func (g *memGuard) Acquire(_ context.Context, key string) (bool, error) {
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	delete(g.held, key)
	g.released = append(g.released, key)
	return nil
}
