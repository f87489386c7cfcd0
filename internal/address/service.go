package address

import (
	"context"
	"strings"

	"bakery-be/internal/logger"
	"bakery-be/internal/uow"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, userID string) ([]*Address, error)
	Get(ctx context.Context, userID, addressID string) (*Address, error)
	Create(ctx context.Context, userID string, input CreateAddressInput) (*Address, error)
	Delete(ctx context.Context, userID, addressID string) error
}

type service struct {
	uow uow.UOW
}

func NewService(u uow.UOW) Service {
	return &service{uow: u}
}

func (s *service) repo() (Repository, error) {
	return uow.GetRepositoryAs[Repository](s.uow, RepoName)
}

func (s *service) List(ctx context.Context, userID string) ([]*Address, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// Get returns the address only to its owner. Foreign addresses look missing.
func (s *service) Get(ctx context.Context, userID, addressID string) (*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Get"),
		zap.String("address_id", addressID),
	)

	repo, err := s.repo()
	if err != nil {
		return nil, err
	}

	a, err := repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		log.Warn("address owned by another user")
		return nil, ErrAddressNotFound
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, userID string, input CreateAddressInput) (*Address, error) {
	if strings.TrimSpace(input.ContactName) == "" ||
		strings.TrimSpace(input.Phone) == "" ||
		strings.TrimSpace(input.Detail) == "" {
		return nil, ErrInvalidAddress
	}

	a := &Address{
		UserID:      userID,
		ContactName: strings.TrimSpace(input.ContactName),
		Phone:       strings.TrimSpace(input.Phone),
		Province:    input.Province,
		City:        input.City,
		District:    input.District,
		Detail:      strings.TrimSpace(input.Detail),
		IsDefault:   input.SetAsDefault,
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		if a.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID string) error {
	repo, err := s.repo()
	if err != nil {
		return err
	}
	return repo.Deactivate(ctx, userID, addressID)
}
