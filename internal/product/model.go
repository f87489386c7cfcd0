package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOn  Status = "on"
	StatusOff Status = "off"
)

func (s Status) Valid() bool {
	return s == StatusOn || s == StatusOff
}

// Spec is a product variant (size, flavour) with its own price and stock.
type Spec struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	StockWarning int             `json:"stockWarning"`
	Status       Status          `json:"status"`
	Sales        int             `json:"sales"`
	CategoryID   *string         `json:"categoryId,omitempty"`
	Specs        []Spec          `json:"specs"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (p *Product) FindSpec(specID string) *Spec {
	for i := range p.Specs {
		if p.Specs[i].ID == specID {
			return &p.Specs[i]
		}
	}
	return nil
}

// Offer is the sellable unit a cart line resolves to: either a spec or the
// product root.
type Offer struct {
	SpecName string
	Price    decimal.Decimal
	Stock    int
}

// Resolve picks price and stock from the spec when specID is set, else from
// the product root.
func (p *Product) Resolve(specID string) (Offer, error) {
	if specID == "" {
		return Offer{Price: p.Price, Stock: p.Stock}, nil
	}
	spec := p.FindSpec(specID)
	if spec == nil {
		return Offer{}, ErrSpecNotFound
	}
	return Offer{SpecName: spec.Name, Price: spec.Price, Stock: spec.Stock}, nil
}

type StockRecord struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	SpecID     string    `json:"specId"`
	Change     int       `json:"change"`
	StockAfter int       `json:"stockAfter"`
	Reason     string    `json:"reason"`
	OperatorID string    `json:"operatorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type SpecInput struct {
	ID    string          `json:"id"`
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

type CreateInput struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock" validate:"gte=0"`
	StockWarning int             `json:"stockWarning" validate:"gte=0"`
	Status       Status          `json:"status"`
	CategoryID   string          `json:"categoryId"`
	Specs        []SpecInput     `json:"specs" validate:"dive"`
}

type UpdateInput struct {
	ID           string           `json:"id" validate:"required"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	ImageURL     *string          `json:"imageUrl"`
	Price        *decimal.Decimal `json:"price"`
	StockWarning *int             `json:"stockWarning"`
	// CategoryID moves the product; an empty string clears it.
	CategoryID *string `json:"categoryId"`
}

type AdjustStockInput struct {
	ProductID string `json:"productId" validate:"required"`
	SpecID    string `json:"specId"`
	Change    int    `json:"change" validate:"ne=0"`
	Reason    string `json:"reason"`
}
