package function

import (
	"context"
	"time"

	"bakery-be/internal/address"
	"bakery-be/internal/apperr"
	"bakery-be/internal/cart"
	"bakery-be/internal/category"
	"bakery-be/internal/coupon"
	"bakery-be/internal/order"
	"bakery-be/internal/product"
	"bakery-be/internal/stats"
	"bakery-be/internal/user"
	"bakery-be/internal/utils"
)

// Services are the domain services the functions call into.
type Services struct {
	Orders     order.Service
	Products   product.Service
	Categories category.Service
	Coupons    coupon.Service
	Users      user.Service
	Carts      cart.Service
	Addresses  address.Service
	Stats      stats.Service

	// DevLogin enables auth.login, which trusts the openid in the request.
	DevLogin bool
	TokenTTL time.Duration
	Location *time.Location
	Now      func() time.Time
}

// Register wires every function and action into reg.
func Register(reg *Registry, s Services) {
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	reg.Define("auth", Public)
	reg.Define("order", Authenticated)
	reg.Define("user", Authenticated)
	reg.Define("cart", Authenticated)
	reg.Define("product", Authenticated)
	reg.Define("admin", AdminOnly)

	registerAuth(reg, s)
	registerOrder(reg, s)
	registerUser(reg, s)
	registerCart(reg, s)
	registerProduct(reg, s)
	registerAdmin(reg, s)
}

type Empty struct{}

type byID struct {
	ID string `json:"id" validate:"required"`
}

type byOrderID struct {
	OrderID string `json:"orderId" validate:"required"`
}

type pageRequest struct {
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

// OK is returned by actions that only report success.
type OK struct {
	Success bool `json:"success"`
}

var done = OK{Success: true}

func caller(ctx context.Context) string {
	id, _ := utils.GetUserIDFromContext(ctx)
	return id
}

// parseDay reads a YYYY-MM-DD date at midnight in the reporting location.
func (s Services) parseDay(v string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, v, s.Location)
	if err != nil {
		return time.Time{}, apperr.With(ErrInvalidData, "dates use YYYY-MM-DD")
	}
	return t, nil
}

// dayRange turns optional inclusive day bounds into a half-open time range.
func (s Services) dayRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := s.parseDay(from)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if to != "" {
		t, err := s.parseDay(to)
		if err != nil {
			return nil, nil, err
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end, nil
}
