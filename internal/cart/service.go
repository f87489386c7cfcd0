package cart

import (
	"context"

	"bakery-be/internal/product"
	"bakery-be/internal/uow"

	"github.com/ecodeclub/ekit/slice"
)

type Service interface {
	Add(ctx context.Context, userID string, input AddInput) (*CartItem, error)
	List(ctx context.Context, userID string) ([]*Line, error)
	UpdateQuantity(ctx context.Context, userID string, input UpdateQuantityInput) error
	Remove(ctx context.Context, userID, id string) error
}

type service struct {
	uow uow.UOW
}

func NewService(u uow.UOW) Service {
	return &service{uow: u}
}

// Add puts quantity units into the cart, merging with an existing row. The
// merged quantity must still be covered by stock.
func (s *service) Add(ctx context.Context, userID string, input AddInput) (*CartItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item *CartItem
	err := s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		products, err := uow.GetAs[product.Repository](tx, product.RepoName)
		if err != nil {
			return err
		}

		p, err := products.GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if p.Status != product.StatusOn {
			return ErrProductOffShelf
		}
		offer, err := p.Resolve(input.SpecID)
		if err != nil {
			return err
		}

		key := Key{ProductID: input.ProductID, SpecID: input.SpecID}
		existing, err := repo.GetByKey(ctx, userID, key)
		if err != nil {
			return err
		}

		qty := input.Quantity
		if existing != nil {
			qty += existing.Quantity
		}
		if qty > offer.Stock {
			return ErrInsufficientStock
		}

		if existing != nil {
			if err := repo.UpdateQuantity(ctx, userID, existing.ID, qty); err != nil {
				return err
			}
			existing.Quantity = qty
			item = existing
			return nil
		}

		item = &CartItem{UserID: userID, ProductID: input.ProductID, SpecID: input.SpecID, Quantity: qty}
		return repo.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List resolves cart rows against the catalogue. Rows whose product was
// removed or taken off the shelf are returned as unavailable.
func (s *service) List(ctx context.Context, userID string) ([]*Line, error) {
	repo, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return nil, err
	}
	products, err := uow.GetRepositoryAs[product.Repository](s.uow, product.RepoName)
	if err != nil {
		return nil, err
	}

	items, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := slice.Map(items, func(_ int, it *CartItem) string { return it.ProductID })
	byID, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return slice.Map(items, func(_ int, it *CartItem) *Line {
		line := &Line{CartItem: *it}
		p, ok := byID[it.ProductID]
		if !ok {
			return line
		}
		line.Name = p.Name
		line.ImageURL = p.ImageURL
		offer, err := p.Resolve(it.SpecID)
		if err != nil {
			return line
		}
		line.SpecName = offer.SpecName
		line.Price = offer.Price
		line.Stock = offer.Stock
		line.Available = p.Status == product.StatusOn && offer.Stock >= it.Quantity
		return line
	}), nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID string, input UpdateQuantityInput) error {
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
		repo, err := uow.GetAs[Repository](tx, RepoName)
		if err != nil {
			return err
		}
		products, err := uow.GetAs[product.Repository](tx, product.RepoName)
		if err != nil {
			return err
		}

		it, err := repo.Get(ctx, userID, input.ID)
		if err != nil {
			return err
		}
		p, err := products.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		offer, err := p.Resolve(it.SpecID)
		if err != nil {
			return err
		}
		if input.Quantity > offer.Stock {
			return ErrInsufficientStock
		}
		return repo.UpdateQuantity(ctx, userID, it.ID, input.Quantity)
	})
}

func (s *service) Remove(ctx context.Context, userID, id string) error {
	repo, err := uow.GetRepositoryAs[Repository](s.uow, RepoName)
	if err != nil {
		return err
	}
	return repo.Remove(ctx, userID, id)
}
