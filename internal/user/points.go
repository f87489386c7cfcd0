package user

import (
	"context"
	"fmt"
	"time"

	"bakery-be/internal/uow"

	"github.com/google/uuid"
)

const PointsRepoName uow.RepositoryName = "points"

// PointsRepository is append-only.
type PointsRepository interface {
	Insert(ctx context.Context, rec *PointsRecord) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*PointsRecord, error)
}

type pointsRepository struct {
	db uow.DBTX
}

func NewPointsRepository(db uow.DBTX) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) Insert(ctx context.Context, rec *PointsRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO points_history (id, user_id, type, amount, balance, order_id, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.UserID, rec.Type, rec.Amount, rec.Balance, rec.OrderID, rec.Description, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert points record: %w", err)
	}
	return nil
}

func (r *pointsRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*PointsRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, balance, order_id, description, created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list points history: %w", err)
	}
	defer rows.Close()

	var list []*PointsRecord
	for rows.Next() {
		var rec PointsRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Type, &rec.Amount, &rec.Balance, &rec.OrderID, &rec.Description, &rec.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
