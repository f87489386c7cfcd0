package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bakery-be/internal/logger"
	"bakery-be/internal/uow"

	"go.uber.org/zap"
)

const RepoName uow.RepositoryName = "user"

type Repository interface {
	GetByOpenID(ctx context.Context, openID string) (*User, error)
	// Ensure creates the user row on first sight and returns the stored user.
	Ensure(ctx context.Context, openID string) (*User, error)

	// DeductPoints takes amount points when the balance covers it and
	// returns the balance after the change.
	DeductPoints(ctx context.Context, openID string, amount int64) (int64, error)
	AddPoints(ctx context.Context, openID string, amount int64) (int64, error)

	FindAdminByUsername(ctx context.Context, username string) (*Admin, error)
}

type repository struct {
	db uow.DBTX
}

func NewRepository(db uow.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `openid, nick_name, avatar_url, points, balance, role, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.OpenID, &u.NickName, &u.AvatarURL, &u.Points, &u.Balance, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetByOpenID(ctx context.Context, openID string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE openid = $1
	`, openID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *repository) Ensure(ctx context.Context, openID string) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Ensure"),
	)

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (openid, role, created_at, updated_at)
		VALUES ($1, 'user', NOW(), NOW())
		ON CONFLICT (openid) DO UPDATE SET updated_at = users.updated_at
		RETURNING `+userColumns,
		openID))
	if err != nil {
		log.Error("db: failed to upsert user", zap.Error(err))
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return u, nil
}

func (r *repository) DeductPoints(ctx context.Context, openID string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET points = points - $1, updated_at = NOW()
		WHERE openid = $2 AND points >= $1
		RETURNING points
	`, amount, openID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientPoints
	}
	if err != nil {
		return 0, fmt.Errorf("deduct points: %w", err)
	}
	return balance, nil
}

func (r *repository) AddPoints(ctx context.Context, openID string, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET points = points + $1, updated_at = NOW()
		WHERE openid = $2
		RETURNING points
	`, amount, openID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}
	return balance, nil
}

func (r *repository) FindAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	var a Admin
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM admins
		WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}
