package category

import (
	"context"
	"strings"

	"bakery-be/internal/audit"
	"bakery-be/internal/logger"
	"bakery-be/internal/uow"
	"bakery-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, input CreateInput) (*Category, error)
	Update(ctx context.Context, input UpdateInput) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	uow uow.UOW
}

func NewService(u uow.UOW) Service {
	return &service{uow: u}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	repo, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	c := &Category{Name: name, Position: input.Position}
	adminID, _ := utils.GetUserIDFromContext(ctx)

	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionCreateCategory,
			TargetID: c.ID,
			Detail:   map[string]any{"name": c.Name},
		})
	})
	if err != nil {
		log.Warn("failed to create category", zap.Error(err))
		return nil, err
	}

	log.Info("category created", zap.String("category_id", c.ID))
	return c, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*Category, error) {
	adminID, _ := utils.GetUserIDFromContext(ctx)

	var updated *Category
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		c, err := repo.Get(ctx, input.ID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrInvalidName
			}
			c.Name = name
		}
		if input.Position != nil {
			c.Position = *input.Position
		}
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		updated = c

		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionUpdateCategory,
			TargetID: c.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	adminID, _ := utils.GetUserIDFromContext(ctx)

	return s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionDeleteCategory,
			TargetID: id,
		})
	})
}
