package address

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

const RepoName uow.RepositoryName = "address"

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*Address, error)
	GetByID(ctx context.Context, id string) (*Address, error)

	Create(ctx context.Context, addr *Address) error
	Deactivate(ctx context.Context, userID, id string) error
	ClearDefault(ctx context.Context, userID string) error
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

const addressColumns = `id, user_id, contact_name, phone, province, city, district, detail, is_default, is_active, created_at`

func scanAddress(row interface{ Scan(...any) error }) (*Address, error) {
	var a Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.ContactName, &a.Phone,
		&a.Province, &a.City, &a.District, &a.Detail,
		&a.IsDefault, &a.IsActive, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "ListByUser"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		  AND is_active = true
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE id = $1 AND is_active = true
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

func (r *repository) Create(ctx context.Context, a *Address) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.IsActive = true
	a.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (
			id, user_id, contact_name, phone, province, city, district, detail,
			is_default, is_active, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true,$10)
	`, a.ID, a.UserID, a.ContactName, a.Phone, a.Province, a.City, a.District, a.Detail, a.IsDefault, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET is_active = false, is_default = false
		WHERE id = $1 AND user_id = $2 AND is_active = true
	`, id, userID)
	if err != nil {
		return fmt.Errorf("deactivate address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *repository) ClearDefault(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = false
		WHERE user_id = $1 AND is_default = true
	`, userID)
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}
