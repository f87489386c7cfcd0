package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bakery-be/internal/logger"
	"bakery-be/internal/uow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RepoName uow.RepositoryName = "cart"

type Repository interface {
	Get(ctx context.Context, userID, id string) (*CartItem, error)
	GetByKey(ctx context.Context, userID string, key Key) (*CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]*CartItem, error)
	Create(ctx context.Context, item *CartItem) error
	UpdateQuantity(ctx context.Context, userID, id string, quantity int) error
	Remove(ctx context.Context, userID, id string) error
	// DeletePurchased drops the rows matching keys for userID. Missing rows
	// are ignored.
	DeletePurchased(ctx context.Context, userID string, keys []Key) error
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

const cartColumns = `id, user_id, product_id, spec_id, quantity, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*CartItem, error) {
	var it CartItem
	if err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.SpecID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) Get(ctx context.Context, userID, id string) (*CartItem, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `
		SELECT `+cartColumns+`
		FROM cart_items
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return it, nil
}

// GetByKey returns nil when the user has no row for key.
func (r *repository) GetByKey(ctx context.Context, userID string, key Key) (*CartItem, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, `
		SELECT `+cartColumns+`
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND spec_id = $3
	`, userID, key.ProductID, key.SpecID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return it, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cartColumns+`
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []*CartItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Create(ctx context.Context, item *CartItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, spec_id, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
	`, item.ID, item.UserID, item.ProductID, item.SpecID, item.Quantity, now)
	if err != nil {
		return fmt.Errorf("create cart item: %w", err)
	}
	return nil
}

func (r *repository) UpdateQuantity(ctx context.Context, userID, id string, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, quantity, id, userID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) DeletePurchased(ctx context.Context, userID string, keys []Key) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeletePurchased"),
	)

	for _, k := range keys {
		if _, err := r.db.ExecContext(ctx, `
			DELETE FROM cart_items
			WHERE user_id = $1 AND product_id = $2 AND spec_id = $3
		`, userID, k.ProductID, k.SpecID); err != nil {
			log.Error("failed to delete purchased cart row", zap.String("product_id", k.ProductID), zap.Error(err))
			return fmt.Errorf("delete purchased cart items: %w", err)
		}
	}
	return nil
}
