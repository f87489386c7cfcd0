package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery-be/internal/logger"
	"bakery-be/internal/uow"

	"github.com/ecodeclub/ekit/slice"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const RepoName uow.RepositoryName = "order"

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Order, error)

	// UpdateStatus applies p only while the order is still in status from.
	// It fails with ErrStatusChanged when another writer got there first.
	UpdateStatus(ctx context.Context, id string, from Status, p Patch) error
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, order_no, user_id, status, delivery_type,
	contact_name, contact_phone, address, remark,
	subtotal, delivery_fee, discount, pay_amount,
	user_coupon_id, payment_type, points_deducted, cancel_reason,
	created_at, updated_at, paid_at, pack_start_time, pack_end_time,
	dispatched_at, completed_at, cancelled_at, refunded_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var (
		o            Order
		userCouponID sql.NullString
		paymentType  sql.NullString
		cancelReason sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.OrderNo, &o.UserID, &o.Status, &o.DeliveryType,
		&o.ContactName, &o.ContactPhone, &o.Address, &o.Remark,
		&o.Subtotal, &o.DeliveryFee, &o.Discount, &o.PayAmount,
		&userCouponID, &paymentType, &o.PointsDeducted, &cancelReason,
		&o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.PackStartTime, &o.PackEndTime,
		&o.DispatchedAt, &o.CompletedAt, &o.CancelledAt, &o.RefundedAt,
	)
	if err != nil {
		return nil, err
	}
	if userCouponID.Valid {
		o.UserCouponID = &userCouponID.String
	}
	o.PaymentType = PaymentType(paymentType.String)
	o.CancelReason = cancelReason.String
	return &o, nil
}

func (r *repository) Insert(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Insert"),
		zap.String("order_no", o.OrderNo),
	)

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	o.UpdatedAt = o.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_no, user_id, status, delivery_type,
			contact_name, contact_phone, address, remark,
			subtotal, delivery_fee, discount, pay_amount,
			user_coupon_id, points_deducted, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,0,$15,$15)
	`,
		o.ID, o.OrderNo, o.UserID, o.Status, o.DeliveryType,
		o.ContactName, o.ContactPhone, o.Address, o.Remark,
		o.Subtotal, o.DeliveryFee, o.Discount, o.PayAmount,
		o.UserCouponID, o.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID

		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, spec_id, name, spec_name, image_url,
				price, quantity, subtotal
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			it.ID, o.ID, it.ProductID, it.SpecID, it.Name, it.SpecName, it.ImageURL,
			it.Price, it.Quantity, it.Subtotal,
		)
		if err != nil {
			log.Error("failed to insert order item", zap.String("product_id", it.ProductID), zap.Error(err))
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *repository) itemsFor(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	res := make(map[string][]Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return res, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, spec_id, name, spec_name, image_url, price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("fetch order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.SpecID, &it.Name, &it.SpecName, &it.ImageURL,
			&it.Price, &it.Quantity, &it.Subtotal,
		); err != nil {
			return nil, err
		}
		res[it.OrderID] = append(res[it.OrderID], it)
	}
	return res, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	// ---------- BASE QUERY ----------
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIndex := 1

	// ---------- FILTERING ----------
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.DeliveryType != "" {
		query += fmt.Sprintf(" AND delivery_type = $%d", argIndex)
		args = append(args, filter.DeliveryType)
		argIndex++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	// ---------- PAGINATION ----------
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, slice.Map(orders, func(_ int, o *Order) string { return o.ID }))
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, from Status, p Patch) error {
	sets := []string{"status = $1", "updated_at = NOW()"}
	args := []any{p.Status}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.PaymentType != nil {
		add("payment_type", string(*p.PaymentType))
	}
	if p.PointsDeducted != nil {
		add("points_deducted", *p.PointsDeducted)
	}
	if p.CancelReason != nil {
		add("cancel_reason", *p.CancelReason)
	}
	if p.PaidAt != nil {
		add("paid_at", *p.PaidAt)
	}
	if p.PackStartTime != nil {
		add("pack_start_time", *p.PackStartTime)
	}
	if p.PackEndTime != nil {
		add("pack_end_time", *p.PackEndTime)
	}
	if p.DispatchedAt != nil {
		add("dispatched_at", *p.DispatchedAt)
	}
	if p.CompletedAt != nil {
		add("completed_at", *p.CompletedAt)
	}
	if p.CancelledAt != nil {
		add("cancelled_at", *p.CancelledAt)
	}
	if p.RefundedAt != nil {
		add("refunded_at", *p.RefundedAt)
	}

	args = append(args, id, from)
	query := fmt.Sprintf(
		"UPDATE orders SET %s WHERE id = $%d AND status = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}
