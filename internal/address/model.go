package address

import (
	"strings"
	"time"
)

type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ContactName string    `json:"contactName"`
	Phone       string    `json:"phone"`
	Province    string    `json:"province"`
	City        string    `json:"city"`
	District    string    `json:"district"`
	Detail      string    `json:"detail"`
	IsDefault   bool      `json:"isDefault"`
	IsActive    bool      `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FullText joins the region and the street detail for order snapshots.
func (a *Address) FullText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Province, a.City, a.District, a.Detail} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type CreateAddressInput struct {
	ContactName  string `json:"contactName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Province     string `json:"province"`
	City         string `json:"city"`
	District     string `json:"district"`
	Detail       string `json:"detail" validate:"required"`
	SetAsDefault bool   `json:"setAsDefault"`
}
