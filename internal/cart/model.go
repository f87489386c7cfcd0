package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart. SpecID is empty when the product
// has no specs.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	SpecID    string    `json:"specId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Line is a cart item resolved against the live catalogue.
type Line struct {
	CartItem
	Name      string          `json:"name"`
	SpecName  string          `json:"specName"`
	ImageURL  string          `json:"imageUrl"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// Key identifies the cart row of one purchasable unit.
type Key struct {
	ProductID string
	SpecID    string
}

type AddInput struct {
	ProductID string `json:"productId" validate:"required"`
	SpecID    string `json:"specId"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type UpdateQuantityInput struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}
