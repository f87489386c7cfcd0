package stats

import (
	"context"
	"fmt"
	"time"

	"bakery-be/internal/order"
	"bakery-be/internal/uow"

	"github.com/ecodeclub/ekit/slice"
	"github.com/lib/pq"
)

const RepoName uow.RepositoryName = "stats"

// Repository is read-only.
type Repository interface {
	SalesBetween(ctx context.Context, from, to time.Time) (Sales, error)
	SoldOrders(ctx context.Context, from, to time.Time) ([]SoldOrder, error)
	SoldItems(ctx context.Context, from, to time.Time) ([]SoldItem, error)
	StockWarningCount(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, statuses []order.Status) (map[order.Status]int, error)
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

func statusArray(statuses []order.Status) any {
	return pq.Array(slice.Map(statuses, func(_ int, s order.Status) int64 { return int64(s) }))
}

func (r *repository) SalesBetween(ctx context.Context, from, to time.Time) (Sales, error) {
	var s Sales
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(pay_amount), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status = ANY($3)
	`, from, to, statusArray(soldStatuses)).Scan(&s.Amount, &s.Count)
	if err != nil {
		return Sales{}, fmt.Errorf("sum sales: %w", err)
	}
	return s, nil
}

func (r *repository) SoldOrders(ctx context.Context, from, to time.Time) ([]SoldOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at, pay_amount
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status = ANY($3)
	`, from, to, statusArray(soldStatuses))
	if err != nil {
		return nil, fmt.Errorf("fetch sold orders: %w", err)
	}
	defer rows.Close()

	var res []SoldOrder
	for rows.Next() {
		var o SoldOrder
		if err := rows.Scan(&o.CreatedAt, &o.PayAmount); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r *repository) SoldItems(ctx context.Context, from, to time.Time) ([]SoldItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, oi.name, oi.quantity, oi.subtotal
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status = ANY($3)
	`, from, to, statusArray(soldStatuses))
	if err != nil {
		return nil, fmt.Errorf("fetch sold items: %w", err)
	}
	defer rows.Close()

	var res []SoldItem
	for rows.Next() {
		var it SoldItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

// StockWarningCount counts on-shelf products running low. A product with
// specs is low when any of its specs is at or under the threshold; the root
// stock only counts for products without specs.
func (r *repository) StockWarningCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM products p
		WHERE p.status = 'on'
		  AND (
		    EXISTS (
		      SELECT 1 FROM product_specs s
		      WHERE s.product_id = p.id AND s.stock <= p.stock_warning
		    )
		    OR (
		      NOT EXISTS (SELECT 1 FROM product_specs s WHERE s.product_id = p.id)
		      AND p.stock <= p.stock_warning
		    )
		  )
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stock warnings: %w", err)
	}
	return n, nil
}

func (r *repository) CountByStatus(ctx context.Context, statuses []order.Status) (map[order.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM orders
		WHERE status = ANY($1)
		GROUP BY status
	`, statusArray(statuses))
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()

	res := make(map[order.Status]int, len(statuses))
	for rows.Next() {
		var (
			s order.Status
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		res[s] = n
	}
	return res, rows.Err()
}
