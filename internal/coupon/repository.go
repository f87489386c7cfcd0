package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bakery-be/internal/uow"

	"github.com/google/uuid"
)

const RepoName uow.RepositoryName = "coupon"

type Repository interface {
	GetTemplate(ctx context.Context, id string) (*Coupon, error)
	CreateTemplate(ctx context.Context, c *Coupon) error

	// GetUserCoupon loads the user coupon with its template attached.
	GetUserCoupon(ctx context.Context, id string) (*UserCoupon, error)
	ListByUser(ctx context.Context, userID string) ([]*UserCoupon, error)
	Issue(ctx context.Context, uc *UserCoupon) error

	// MarkUsed flips an unused coupon owned by userID to used. It fails with
	// ErrCouponUnavailable when the coupon was consumed concurrently.
	MarkUsed(ctx context.Context, id, userID, orderID string, at time.Time) error
	// Reopen returns a coupon consumed by orderID to unused.
	Reopen(ctx context.Context, id, orderID string) error
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetTemplate(ctx context.Context, id string) (*Coupon, error) {
	var c Coupon
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, value, min_spend, start_time, end_time, created_at
		FROM coupons
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Type, &c.Value, &c.MinSpend, &c.StartTime, &c.EndTime, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &c, nil
}

func (r *repository) CreateTemplate(ctx context.Context, c *Coupon) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (id, name, type, value, min_spend, start_time, end_time, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, c.ID, c.Name, c.Type, c.Value, c.MinSpend, c.StartTime, c.EndTime, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

const userCouponSelect = `
	SELECT uc.id, uc.user_id, uc.coupon_id, uc.status, uc.order_id, uc.used_at, uc.issued_at,
		c.id, c.name, c.type, c.value, c.min_spend, c.start_time, c.end_time, c.created_at
	FROM user_coupons uc
	JOIN coupons c ON c.id = uc.coupon_id
`

func scanUserCoupon(row interface{ Scan(...any) error }) (*UserCoupon, error) {
	var (
		uc      UserCoupon
		c       Coupon
		orderID sql.NullString
		usedAt  sql.NullTime
	)
	err := row.Scan(
		&uc.ID, &uc.UserID, &uc.CouponID, &uc.Status, &orderID, &usedAt, &uc.IssuedAt,
		&c.ID, &c.Name, &c.Type, &c.Value, &c.MinSpend, &c.StartTime, &c.EndTime, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if orderID.Valid {
		uc.OrderID = &orderID.String
	}
	if usedAt.Valid {
		uc.UsedAt = &usedAt.Time
	}
	uc.Coupon = &c
	return &uc, nil
}

func (r *repository) GetUserCoupon(ctx context.Context, id string) (*UserCoupon, error) {
	uc, err := scanUserCoupon(r.db.QueryRowContext(ctx, userCouponSelect+` WHERE uc.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user coupon: %w", err)
	}
	return uc, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*UserCoupon, error) {
	rows, err := r.db.QueryContext(ctx, userCouponSelect+`
		WHERE uc.user_id = $1
		ORDER BY uc.issued_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user coupons: %w", err)
	}
	defer rows.Close()

	var list []*UserCoupon
	for rows.Next() {
		uc, err := scanUserCoupon(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, uc)
	}
	return list, rows.Err()
}

func (r *repository) Issue(ctx context.Context, uc *UserCoupon) error {
	if uc.ID == "" {
		uc.ID = uuid.NewString()
	}
	uc.Status = StatusUnused
	uc.IssuedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_coupons (id, user_id, coupon_id, status, issued_at)
		VALUES ($1,$2,$3,$4,$5)
	`, uc.ID, uc.UserID, uc.CouponID, uc.Status, uc.IssuedAt)
	if err != nil {
		return fmt.Errorf("issue coupon: %w", err)
	}
	return nil
}

func (r *repository) MarkUsed(ctx context.Context, id, userID, orderID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_coupons
		SET status = $1, order_id = $2, used_at = $3
		WHERE id = $4 AND user_id = $5 AND status = $6
	`, StatusUsed, orderID, at, id, userID, StatusUnused)
	if err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCouponUnavailable
	}
	return nil
}

func (r *repository) Reopen(ctx context.Context, id, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_coupons
		SET status = $1, order_id = NULL, used_at = NULL
		WHERE id = $2 AND order_id = $3 AND status = $4
	`, StatusUnused, id, orderID, StatusUsed)
	if err != nil {
		return fmt.Errorf("reopen coupon: %w", err)
	}
	return nil
}
