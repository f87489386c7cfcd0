package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery-be/internal/address"
	"bakery-be/internal/apperr"
	"bakery-be/internal/audit"
	"bakery-be/internal/cart"
	"bakery-be/internal/coupon"
	"bakery-be/internal/logger"
	"bakery-be/internal/product"
	"bakery-be/internal/uow"
	"bakery-be/internal/user"
	"bakery-be/internal/utils"

	"github.com/ecodeclub/ekit/slice"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Cancel(ctx context.Context, userID, orderID, reason string) error
	AdminCancel(ctx context.Context, adminID, orderID, reason string) error
	PayWithPoints(ctx context.Context, userID, orderID string) (*PayResult, error)
	PayOffline(ctx context.Context, userID, orderID string) error

	UpdateStatus(ctx context.Context, adminID, orderID string, to Status) error
	StartPacking(ctx context.Context, adminID, orderID string) error
	FinishPacking(ctx context.Context, adminID, orderID string) error
	Dispatch(ctx context.Context, adminID, orderID string) error
	Complete(ctx context.Context, adminID, orderID string) error

	Get(ctx context.Context, userID, orderID string) (*Order, error)
	AdminGet(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
}

// Guard deduplicates submits that carry the same key.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Metrics receives business events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	OrderCreated(deliveryType string, payAmount float64)
	OrderCancelled(by string)
	PointsPaid(points int64)
	StatusChanged(from, to string)
}

type nopGuard struct{}

func (nopGuard) Acquire(context.Context, string) (bool, error) { return true, nil }
func (nopGuard) Release(context.Context, string) error         { return nil }

type nopMetrics struct{}

func (nopMetrics) OrderCreated(string, float64) {}
func (nopMetrics) OrderCancelled(string)        {}
func (nopMetrics) PointsPaid(int64)             {}
func (nopMetrics) StatusChanged(string, string) {}

type Option func(*service)

func WithGuard(g Guard) Option {
	return func(s *service) { s.guard = g }
}

func WithMetrics(m Metrics) Option {
	return func(s *service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	uow         uow.UOW
	deliveryFee decimal.Decimal
	guard       Guard
	metrics     Metrics
	now         func() time.Time
}

func NewService(u uow.UOW, deliveryFee decimal.Decimal, opts ...Option) Service {
	s := &service{
		uow:         u,
		deliveryFee: deliveryFee,
		guard:       nopGuard{},
		metrics:     nopMetrics{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// repos is the set of repositories one order transaction works with.
type repos struct {
	orders   Repository
	products product.Repository
	coupons  coupon.Repository
	users    user.Repository
	points   user.PointsRepository
	carts    cart.Repository
	address  address.Repository
}

func load(tx uow.TX) (*repos, error) {
	var (
		r   repos
		err error
	)
	if r.orders, err = uow.GetAs[Repository](tx, RepoName); err != nil {
		return nil, err
	}
	if r.products, err = uow.GetAs[product.Repository](tx, product.RepoName); err != nil {
		return nil, err
	}
	if r.coupons, err = uow.GetAs[coupon.Repository](tx, coupon.RepoName); err != nil {
		return nil, err
	}
	if r.users, err = uow.GetAs[user.Repository](tx, user.RepoName); err != nil {
		return nil, err
	}
	if r.points, err = uow.GetAs[user.PointsRepository](tx, user.PointsRepoName); err != nil {
		return nil, err
	}
	if r.carts, err = uow.GetAs[cart.Repository](tx, cart.RepoName); err != nil {
		return nil, err
	}
	if r.address, err = uow.GetAs[address.Repository](tx, address.RepoName); err != nil {
		return nil, err
	}
	return &r, nil
}

func validateCreate(input CreateInput) error {
	if len(input.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range input.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 {
			return ErrInvalidItem
		}
	}
	if !input.DeliveryType.Valid() {
		return ErrInvalidDeliveryType
	}
	if input.DeliveryType == DeliveryDelivery && input.AddressID == "" {
		return ErrAddressRequired
	}
	return nil
}

func idempotencyKey(userID, requestID string) string {
	return fmt.Sprintf("order:create:%s:%s", userID, requestID)
}

// Create prices the cart against live stock and writes the order. Stock,
// coupon and cart changes commit together with the order or not at all.
func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("user_id", input.UserID),
		zap.Int("item_count", len(input.Items)),
	)

	if err := validateCreate(input); err != nil {
		return nil, err
	}

	if input.RequestID != "" {
		key := idempotencyKey(input.UserID, input.RequestID)
		ok, err := s.guard.Acquire(ctx, key)
		if err != nil {
			log.Error("idempotency guard failed", zap.Error(err))
			return nil, err
		}
		if !ok {
			log.Warn("duplicate order submit", zap.String("request_id", input.RequestID))
			return nil, ErrDuplicateSubmit
		}
		res, err := s.create(ctx, input)
		if err != nil {
			if relErr := s.guard.Release(ctx, key); relErr != nil {
				log.Warn("failed to release idempotency key", zap.Error(relErr))
			}
			return nil, err
		}
		return res, nil
	}

	return s.create(ctx, input)
}

func (s *service) create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("user_id", input.UserID),
	)

	now := s.now()
	o := &Order{
		OrderNo:      utils.GenerateOrderNo(now),
		UserID:       input.UserID,
		Status:       StatusPendingPay,
		DeliveryType: input.DeliveryType,
		Remark:       strings.TrimSpace(input.Remark),
		CreatedAt:    now,
	}

	var pointsEnough bool
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		r, err := load(tx)
		if err != nil {
			return err
		}

		// 1. Resolve every line against one batch read of the catalogue.
		ids := slice.Map(input.Items, func(_ int, it ItemInput) string { return it.ProductID })
		products, err := r.products.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		for _, in := range input.Items {
			p, ok := products[in.ProductID]
			if !ok {
				return product.ErrProductNotFound
			}
			if p.Status != product.StatusOn {
				return apperr.With(product.ErrProductOffShelf, p.Name)
			}
			offer, err := p.Resolve(in.SpecID)
			if err != nil {
				return err
			}
			if in.Quantity > offer.Stock {
				return apperr.With(product.ErrInsufficientStock, p.Name)
			}
			o.Items = append(o.Items, Item{
				ProductID: p.ID,
				SpecID:    in.SpecID,
				Name:      p.Name,
				SpecName:  offer.SpecName,
				ImageURL:  p.ImageURL,
				Price:     offer.Price,
				Quantity:  in.Quantity,
				Subtotal:  offer.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
			})
		}

		// 2. Delivery address snapshot.
		if o.DeliveryType == DeliveryDelivery {
			addr, err := r.address.GetByID(ctx, input.AddressID)
			if err != nil {
				return err
			}
			if addr.UserID != o.UserID {
				return address.ErrAddressNotFound
			}
			o.ContactName = addr.ContactName
			o.ContactPhone = addr.Phone
			o.Address = addr.FullText()
		}

		// 3. Pricing.
		o.Subtotal = Subtotal(o.Items)
		o.DeliveryFee = decimal.Zero
		if o.DeliveryType == DeliveryDelivery {
			o.DeliveryFee = s.deliveryFee
		}
		o.Discount = decimal.Zero

		var uc *coupon.UserCoupon
		if input.UserCouponID != "" {
			uc, err = r.coupons.GetUserCoupon(ctx, input.UserCouponID)
			if errors.Is(err, coupon.ErrCouponNotFound) {
				return coupon.ErrCouponUnavailable
			}
			if err != nil {
				return err
			}
			if uc.UserID != o.UserID || uc.Status != coupon.StatusUnused {
				return coupon.ErrCouponUnavailable
			}
			o.Discount = coupon.Discount(uc.Coupon, o.Subtotal, now)
			if o.Discount.IsPositive() {
				o.UserCouponID = &uc.ID
			} else {
				log.Info("coupon not applicable, keeping it unused", zap.String("user_coupon_id", uc.ID))
			}
		}
		o.PayAmount = PayAmount(o.Subtotal, o.DeliveryFee, o.Discount)

		// 4. Writes. Each conditional update re-checks its precondition.
		for _, it := range o.Items {
			if err := r.products.DeductStock(ctx, it.ProductID, it.SpecID, it.Quantity); err != nil {
				if errors.Is(err, product.ErrInsufficientStock) || errors.Is(err, product.ErrProductOffShelf) {
					return apperr.With(product.ErrInsufficientStock, it.Name)
				}
				return err
			}
		}

		if err := r.orders.Insert(ctx, o); err != nil {
			return err
		}

		if o.UserCouponID != nil {
			if err := r.coupons.MarkUsed(ctx, *o.UserCouponID, o.UserID, o.ID, now); err != nil {
				return err
			}
		}

		keys := slice.Map(o.Items, func(_ int, it Item) cart.Key {
			return cart.Key{ProductID: it.ProductID, SpecID: it.SpecID}
		})
		if err := r.carts.DeletePurchased(ctx, o.UserID, keys); err != nil {
			return err
		}

		// 5. Informational hint for the checkout page.
		u, err := r.users.GetByOpenID(ctx, o.UserID)
		switch {
		case err == nil:
			pointsEnough = u.Points >= RequiredPoints(o.PayAmount)
		case errors.Is(err, user.ErrUserNotFound):
			pointsEnough = false
		default:
			return err
		}
		return nil
	})
	if err != nil {
		log.Warn("order creation failed", zap.Error(err))
		return nil, err
	}

	payAmount, _ := o.PayAmount.Float64()
	s.metrics.OrderCreated(string(o.DeliveryType), payAmount)
	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_no", o.OrderNo),
		zap.String("pay_amount", o.PayAmount.String()),
		zap.String("delivery_type", string(o.DeliveryType)),
		logger.Phone("contact_phone", o.ContactPhone),
	)

	return &CreateResult{
		OrderID:      o.ID,
		OrderNo:      o.OrderNo,
		PayAmount:    o.PayAmount,
		PointsEnough: pointsEnough,
	}, nil
}

func (s *service) Cancel(ctx context.Context, userID, orderID, reason string) error {
	return s.cancel(ctx, orderID, reason, func(o *Order) error {
		if o.UserID != userID {
			return ErrOrderNotFound
		}
		if o.Status.InKitchen() {
			return ErrInKitchen
		}
		if !o.Status.UserCancellable() {
			return ErrNotCancellable
		}
		return nil
	}, "")
}

func (s *service) AdminCancel(ctx context.Context, adminID, orderID, reason string) error {
	return s.cancel(ctx, orderID, reason, func(o *Order) error {
		if !o.Status.AdminCancellable() {
			return ErrNotCancellable
		}
		return nil
	}, adminID)
}

// cancel is the inverse of create. adminID is empty for customer cancels.
func (s *service) cancel(ctx context.Context, orderID, reason string, allow func(*Order) error, adminID string) error {
	by := "user"
	if adminID != "" {
		by = "admin"
	}
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.String("order_id", orderID),
		zap.String("by", by),
	)

	now := s.now()
	var from Status
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		r, err := load(tx)
		if err != nil {
			return err
		}

		o, err := r.orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if err := allow(o); err != nil {
			return err
		}
		from = o.Status

		reason := strings.TrimSpace(reason)
		if err := r.orders.UpdateStatus(ctx, o.ID, o.Status, Patch{
			Status:       StatusCancelled,
			CancelReason: &reason,
			CancelledAt:  &now,
		}); err != nil {
			return err
		}

		if err := restitute(ctx, r, o, "refund for cancelled order "+o.OrderNo, now); err != nil {
			return err
		}

		if adminID != "" {
			return audit.Record(ctx, tx, &audit.Log{
				AdminID:  adminID,
				Action:   audit.ActionCancelOrder,
				TargetID: o.ID,
				Detail:   map[string]any{"from": int(o.Status), "reason": reason},
			})
		}
		return nil
	})
	if err != nil {
		log.Warn("order cancellation failed", zap.Error(err))
		return err
	}

	s.metrics.OrderCancelled(by)
	s.metrics.StatusChanged(from.String(), StatusCancelled.String())
	log.Info("order cancelled", zap.String("from", from.String()))
	return nil
}

// restitute undoes what creating and paying for o consumed.
func restitute(ctx context.Context, r *repos, o *Order, note string, now time.Time) error {
	for _, it := range o.Items {
		if err := r.products.RestoreStock(ctx, it.ProductID, it.SpecID, it.Quantity); err != nil {
			return err
		}
	}

	if o.UserCouponID != nil {
		if err := r.coupons.Reopen(ctx, *o.UserCouponID, o.ID); err != nil {
			return err
		}
	}

	if o.PointsDeducted == 0 || o.PaidAt == nil {
		return nil
	}
	balance, err := r.users.AddPoints(ctx, o.UserID, o.PointsDeducted)
	if err != nil {
		return err
	}
	return r.points.Insert(ctx, &user.PointsRecord{
		UserID:      o.UserID,
		Type:        user.PointsRefund,
		Amount:      o.PointsDeducted,
		Balance:     balance,
		OrderID:     o.ID,
		Description: note,
		CreatedAt:   now,
	})
}

func (s *service) PayWithPoints(ctx context.Context, userID, orderID string) (*PayResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PayWithPoints"),
		zap.String("order_id", orderID),
	)

	orders, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}
	users, err := uow.GetRepositoryAs[user.Repository](s.uow, user.RepoName)
	if err != nil {
		return nil, err
	}

	o, err := orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if o.Status != StatusPendingPay {
		return nil, ErrNotPendingPay
	}

	required := RequiredPoints(o.PayAmount)

	// Current balance, read now rather than at checkout, for a precise message.
	u, err := users.GetByOpenID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Points < required {
		return nil, apperr.With(ErrInsufficientPoints, fmt.Sprintf("need %d, have %d", required, u.Points))
	}

	now := s.now()
	res := &PayResult{OrderID: o.ID, PointsDeducted: required}
	err = s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		r, err := load(tx)
		if err != nil {
			return err
		}

		balance, err := r.users.DeductPoints(ctx, userID, required)
		if errors.Is(err, user.ErrInsufficientPoints) {
			return ErrInsufficientPoints
		}
		if err != nil {
			return err
		}
		res.PointsBalance = balance

		pt := PaymentPoints
		if err := r.orders.UpdateStatus(ctx, o.ID, StatusPendingPay, Patch{
			Status:         StatusPaid,
			PaymentType:    &pt,
			PointsDeducted: &required,
			PaidAt:         &now,
		}); err != nil {
			return err
		}

		return r.points.Insert(ctx, &user.PointsRecord{
			UserID:      userID,
			Type:        user.PointsSpend,
			Amount:      required,
			Balance:     balance,
			OrderID:     o.ID,
			Description: "points payment for order " + o.OrderNo,
			CreatedAt:   now,
		})
	})
	if err != nil {
		log.Warn("points payment failed", zap.Error(err))
		return nil, err
	}

	s.metrics.PointsPaid(required)
	s.metrics.StatusChanged(StatusPendingPay.String(), StatusPaid.String())
	log.Info("order paid with points", zap.Int64("points", required), zap.Int64("balance", res.PointsBalance))
	return res, nil
}

// PayOffline records that the customer pays at pickup or on delivery.
func (s *service) PayOffline(ctx context.Context, userID, orderID string) error {
	orders, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return err
	}

	o, err := orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrOrderNotFound
	}
	if o.Status != StatusPendingPay {
		return ErrNotPendingPay
	}

	pt := PaymentOffline
	if err := orders.UpdateStatus(ctx, o.ID, StatusPendingPay, Patch{Status: StatusOfflinePay, PaymentType: &pt}); err != nil {
		return err
	}
	s.metrics.StatusChanged(StatusPendingPay.String(), StatusOfflinePay.String())
	return nil
}

// stamp sets the lifecycle timestamp that belongs to entering to.
func stamp(p *Patch, o *Order, to Status, now time.Time) {
	switch to {
	case StatusPaid:
		p.PaidAt = &now
	case StatusPreparing:
		if o.PackStartTime == nil {
			p.PackStartTime = &now
		}
	case StatusDelivering:
		if o.PackEndTime == nil {
			p.PackEndTime = &now
		}
		p.DispatchedAt = &now
	case StatusCompleted:
		p.CompletedAt = &now
	case StatusRefunded:
		p.RefundedAt = &now
	}
}

// transition moves o to `to` after check approves, and journals the admin
// action.
func (s *service) transition(
	ctx context.Context,
	adminID, orderID string,
	check func(*Order) (Patch, error),
) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "transition"),
		zap.String("order_id", orderID),
		zap.String("admin_id", adminID),
	)

	var from, to Status
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		orders, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}

		o, err := orders.Get(ctx, orderID)
		if err != nil {
			return err
		}

		p, err := check(o)
		if err != nil {
			return err
		}
		from, to = o.Status, p.Status

		if err := orders.UpdateStatus(ctx, o.ID, o.Status, p); err != nil {
			return err
		}

		if to == StatusRefunded {
			r, err := load(tx)
			if err != nil {
				return err
			}
			if err := restitute(ctx, r, o, "refund for order "+o.OrderNo, s.now()); err != nil {
				return err
			}
		}

		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionUpdateStatus,
			TargetID: o.ID,
			Detail:   map[string]any{"from": int(from), "to": int(to)},
		})
	})
	if err != nil {
		log.Warn("status change failed", zap.Error(err))
		return err
	}

	if from != to {
		s.metrics.StatusChanged(from.String(), to.String())
	}
	log.Info("order status updated", zap.String("from", from.String()), zap.String("to", to.String()))
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, adminID, orderID string, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if to == StatusCancelled {
		return ErrUseCancel
	}

	return s.transition(ctx, adminID, orderID, func(o *Order) (Patch, error) {
		if !CanTransition(o.Status, to) {
			return Patch{}, apperr.With(ErrInvalidTransition, o.Status.String()+" -> "+to.String())
		}
		p := Patch{Status: to}
		stamp(&p, o, to, s.now())
		return p, nil
	})
}

// StartPacking moves a paid order into the kitchen and marks packing begun.
func (s *service) StartPacking(ctx context.Context, adminID, orderID string) error {
	return s.transition(ctx, adminID, orderID, func(o *Order) (Patch, error) {
		now := s.now()
		switch {
		case o.Status == StatusPreparing && o.PackStartTime == nil:
			return Patch{Status: StatusPreparing, PackStartTime: &now}, nil
		case o.Status == StatusPreparing:
			return Patch{}, ErrInvalidTransition
		case CanTransition(o.Status, StatusPreparing):
			return Patch{Status: StatusPreparing, PackStartTime: &now}, nil
		default:
			return Patch{}, apperr.With(ErrInvalidTransition, o.Status.String()+" -> "+StatusPreparing.String())
		}
	})
}

func (s *service) FinishPacking(ctx context.Context, adminID, orderID string) error {
	return s.transition(ctx, adminID, orderID, func(o *Order) (Patch, error) {
		if o.Status != StatusPreparing {
			return Patch{}, apperr.With(ErrInvalidTransition, "order is "+o.Status.String())
		}
		if o.PackStartTime == nil {
			return Patch{}, ErrPackingNotStarted
		}
		if o.PackEndTime != nil {
			return Patch{}, ErrAlreadyPacked
		}
		now := s.now()
		return Patch{Status: StatusPreparing, PackEndTime: &now}, nil
	})
}

// Dispatch hands a delivery order to the courier.
func (s *service) Dispatch(ctx context.Context, adminID, orderID string) error {
	return s.transition(ctx, adminID, orderID, func(o *Order) (Patch, error) {
		if o.DeliveryType != DeliveryDelivery {
			return Patch{}, ErrNotDelivery
		}
		if !CanTransition(o.Status, StatusDelivering) {
			return Patch{}, apperr.With(ErrInvalidTransition, o.Status.String()+" -> "+StatusDelivering.String())
		}
		p := Patch{Status: StatusDelivering}
		stamp(&p, o, StatusDelivering, s.now())
		return p, nil
	})
}

// Complete closes a delivered or picked-up order.
func (s *service) Complete(ctx context.Context, adminID, orderID string) error {
	return s.transition(ctx, adminID, orderID, func(o *Order) (Patch, error) {
		if !CanTransition(o.Status, StatusCompleted) {
			return Patch{}, apperr.With(ErrInvalidTransition, o.Status.String()+" -> "+StatusCompleted.String())
		}
		p := Patch{Status: StatusCompleted}
		stamp(&p, o, StatusCompleted, s.now())
		return p, nil
	})
}

func (s *service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.AdminGet(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) AdminGet(ctx context.Context, orderID string) (*Order, error) {
	orders, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}
	return orders.Get(ctx, orderID)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.DeliveryType != "" && !filter.DeliveryType.Valid() {
		return nil, ErrInvalidDeliveryType
	}

	orders, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}
	limit, offset := utils.Paginate(filter.Page, filter.Limit)
	return orders.List(ctx, filter, limit, offset)
}
