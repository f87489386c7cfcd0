package user

import (
	"context"
	"errors"

	"bakery-be/internal/auth"
	"bakery-be/internal/logger"
	"bakery-be/internal/uow"
	"bakery-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Profile(ctx context.Context, openID string) (*User, error)
	PointsHistory(ctx context.Context, openID string, page, limit int) ([]*PointsRecord, error)
	AdminLogin(ctx context.Context, username, password string) (*LoginResult, error)
	// Session issues a customer token for an openid vouched for by the host
	// platform, creating the user on first sight.
	Session(ctx context.Context, openID string) (string, *User, error)
}

type TokenIssuer interface {
	Issue(openID, role string) (string, error)
}

type service struct {
	uow    uow.UOW
	tokens TokenIssuer
}

func NewService(u uow.UOW, tokens TokenIssuer) Service {
	return &service{uow: u, tokens: tokens}
}

func (s *service) Profile(ctx context.Context, openID string) (*User, error) {
	repo, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}
	return repo.Ensure(ctx, openID)
}

func (s *service) PointsHistory(ctx context.Context, openID string, page, limit int) ([]*PointsRecord, error) {
	repo, err := uow.GetRepositoryAs[PointsRepository](s.uow, PointsRepoName)
	if err != nil {
		return nil, err
	}
	limit, offset := utils.Paginate(page, limit)
	return repo.ListByUser(ctx, openID, limit, offset)
}

func (s *service) AdminLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdminLogin"),
		zap.String("username", username),
	)

	repo, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}

	a, err := repo.FindAdminByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		log.Warn("admin not found")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPasswordHash(password, a.PasswordHash) {
		log.Warn("password mismatch")
		return nil, ErrInvalidCredentials
	}

	role := a.Role
	if role == "" {
		role = RoleAdmin
	}
	token, err := s.tokens.Issue(a.ID, string(role))
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		return nil, err
	}

	log.Info("admin logged in", zap.String("admin_id", a.ID))
	return &LoginResult{Token: token, AdminID: a.ID, Username: a.Username, Role: role}, nil
}

func (s *service) Session(ctx context.Context, openID string) (string, *User, error) {
	u, err := s.Profile(ctx, openID)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(u.OpenID, string(RoleUser))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
