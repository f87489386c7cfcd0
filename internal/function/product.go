package function

import (
	"context"

	"bakery-be/internal/category"
	"bakery-be/internal/product"
)

type listProductsRequest struct {
	CategoryID string `json:"categoryId"`
	pageRequest
}

func registerProduct(reg *Registry, s Services) {
	reg.Register("product", "list", Bind(func(ctx context.Context, in listProductsRequest) ([]*product.Product, error) {
		return s.Products.ListOnSale(ctx, in.CategoryID, in.Page, in.Limit)
	}))

	reg.Register("product", "detail", Bind(func(ctx context.Context, in byID) (*product.Product, error) {
		p, err := s.Products.Get(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if p.Status != product.StatusOn {
			return nil, product.ErrProductNotFound
		}
		return p, nil
	}))

	reg.Register("product", "categories", Bind(func(ctx context.Context, _ Empty) ([]*category.Category, error) {
		return s.Categories.List(ctx)
	}))
}
