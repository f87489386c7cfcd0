package product

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
	ListOnSale(ctx context.Context, categoryID string, page, limit int) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)

	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, input UpdateInput) (*Product, error)
	SetStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, input AdjustStockInput) (int, error)
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

func (s *service) ListOnSale(ctx context.Context, categoryID string, page, limit int) ([]*Product, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}
	limit, offset := utils.Paginate(page, limit)
	return repo.ListOnSale(ctx, categoryID, limit, offset)
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	repo, err := s.repo()
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidName
	}
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if input.Status == "" {
		input.Status = StatusOff
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	p := &Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		Price:        input.Price,
		Stock:        input.Stock,
		StockWarning: input.StockWarning,
		Status:       input.Status,
		CategoryID:   optional(input.CategoryID),
	}
	for _, si := range input.Specs {
		if si.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		p.Specs = append(p.Specs, Spec{ID: si.ID, Name: si.Name, Price: si.Price, Stock: si.Stock})
	}

	adminID, _ := utils.GetUserIDFromContext(ctx)
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionCreateProduct,
			TargetID: p.ID,
			Detail:   map[string]any{"name": p.Name},
		})
	})
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return p, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*Product, error) {
	adminID, _ := utils.GetUserIDFromContext(ctx)

	var updated *Product
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}

		p, err := repo.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrInvalidName
			}
			p.Name = name
		}
		if input.Description != nil {
			p.Description = *input.Description
		}
		if input.ImageURL != nil {
			p.ImageURL = *input.ImageURL
		}
		if input.Price != nil {
			if input.Price.IsNegative() {
				return ErrInvalidPrice
			}
			p.Price = *input.Price
		}
		if input.StockWarning != nil {
			p.StockWarning = *input.StockWarning
		}
		if input.CategoryID != nil {
			p.CategoryID = optional(*input.CategoryID)
		}

		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p

		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionUpdateProduct,
			TargetID: p.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	adminID, _ := utils.GetUserIDFromContext(ctx)

	return s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		if err := repo.SetStatus(ctx, id, status); err != nil {
			return err
		}
		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionProductStatus,
			TargetID: id,
			Detail:   map[string]any{"status": string(status)},
		})
	})
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
			Action:   audit.ActionDeleteProduct,
			TargetID: id,
		})
	})
}

// AdjustStock applies a manual stock change and journals it. The resulting
// stock never drops below zero.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AdjustStock"),
		zap.String("product_id", input.ProductID),
		zap.Int("change", input.Change),
	)

	adminID, _ := utils.GetUserIDFromContext(ctx)

	var after, warning int
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}

		p, err := repo.GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		warning = p.StockWarning
		if input.SpecID != "" && p.FindSpec(input.SpecID) == nil {
			return ErrSpecNotFound
		}

		after, err = repo.AdjustStock(ctx, input.ProductID, input.SpecID, input.Change)
		if err != nil {
			return err
		}

		if err := repo.InsertStockRecord(ctx, &StockRecord{
			ProductID:  input.ProductID,
			SpecID:     input.SpecID,
			Change:     input.Change,
			StockAfter: after,
			Reason:     input.Reason,
			OperatorID: adminID,
		}); err != nil {
			return err
		}

		return audit.Record(ctx, tx, &audit.Log{
			AdminID:  adminID,
			Action:   audit.ActionAdjustStock,
			TargetID: input.ProductID,
			Detail:   map[string]any{"specId": input.SpecID, "change": input.Change, "after": after},
		})
	})
	if err != nil {
		log.Warn("stock adjustment failed", zap.Error(err))
		return 0, err
	}

	if after <= warning {
		log.Info("stock at or below warning threshold", zap.Int("stock", after))
	}
	return after, nil
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
