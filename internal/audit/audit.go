// Package audit stores the admin operation journal.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakery-be/internal/uow"

	"github.com/google/uuid"
)

const RepoName uow.RepositoryName = "audit"

const (
	ActionCancelOrder   = "order.cancel"
	ActionUpdateStatus  = "order.status"
	ActionCreateProduct = "product.create"
	ActionUpdateProduct = "product.update"
	ActionProductStatus = "product.status"
	ActionDeleteProduct = "product.delete"
	ActionAdjustStock   = "product.stock"
	ActionCreateCoupon  = "coupon.create"
	ActionIssueCoupon   = "coupon.issue"

	ActionCreateCategory = "category.create"
	ActionUpdateCategory = "category.update"
	ActionDeleteCategory = "category.delete"
)

type Log struct {
	ID        string
	AdminID   string
	Action    string
	TargetID  string
	Detail    map[string]any
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, l *Log) error
	ListByTarget(ctx context.Context, targetID string) ([]*Log, error)
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	detail, err := json.Marshal(l.Detail)
	if err != nil {
		return fmt.Errorf("marshal admin log detail: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admin_logs (id, admin_id, action, target_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.AdminID, l.Action, l.TargetID, detail, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admin log: %w", err)
	}
	return nil
}

func (r *repository) ListByTarget(ctx context.Context, targetID string) ([]*Log, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, admin_id, action, target_id, detail, created_at
		FROM admin_logs
		WHERE target_id = $1
		ORDER BY created_at DESC
	`, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*Log
	for rows.Next() {
		var (
			l      Log
			detail []byte
		)
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.TargetID, &detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &l.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal admin log detail: %w", err)
			}
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// Record writes an admin log entry inside tx.
func Record(ctx context.Context, tx uow.TX, l *Log) error {
	repo, err := uow.GetAs[Repository](tx, RepoName)
	if err != nil {
		return err
	}
	return repo.Insert(ctx, l)
}
