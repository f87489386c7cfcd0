package function

import (
	"context"

	"bakery-be/internal/cart"
)

func registerCart(reg *Registry, s Services) {
	reg.Register("cart", "add", Bind(func(ctx context.Context, in cart.AddInput) (*cart.CartItem, error) {
		return s.Carts.Add(ctx, caller(ctx), in)
	}))

	reg.Register("cart", "list", Bind(func(ctx context.Context, _ Empty) ([]*cart.Line, error) {
		return s.Carts.List(ctx, caller(ctx))
	}))

	reg.Register("cart", "updateQuantity", Bind(func(ctx context.Context, in cart.UpdateQuantityInput) (OK, error) {
		if err := s.Carts.UpdateQuantity(ctx, caller(ctx), in); err != nil {
			return OK{}, err
		}
		return done, nil
	}))

	reg.Register("cart", "remove", Bind(func(ctx context.Context, in byID) (OK, error) {
		if err := s.Carts.Remove(ctx, caller(ctx), in.ID); err != nil {
			return OK{}, err
		}
		return done, nil
	}))
}
