package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type int

const (
	TypeFlat    Type = 0
	TypePercent Type = 1
)

func (t Type) Valid() bool {
	return t == TypeFlat || t == TypePercent
}

// Coupon is an admin-defined template. For TypePercent, Value is on a 0-10
// scale: 8.5 means the customer pays 85%.
type Coupon struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      Type            `json:"type"`
	Value     decimal.Decimal `json:"value"`
	MinSpend  decimal.Decimal `json:"minSpend"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (c *Coupon) Active(now time.Time) bool {
	return !now.Before(c.StartTime) && !now.After(c.EndTime)
}

type UserCouponStatus int

const (
	StatusUnused  UserCouponStatus = 0
	StatusUsed    UserCouponStatus = 1
	StatusExpired UserCouponStatus = 2
)

// UserCoupon binds a coupon template to one user.
type UserCoupon struct {
	ID       string           `json:"id"`
	UserID   string           `json:"userId"`
	CouponID string           `json:"couponId"`
	Status   UserCouponStatus `json:"status"`
	OrderID  *string          `json:"orderId,omitempty"`
	UsedAt   *time.Time       `json:"usedAt,omitempty"`
	IssuedAt time.Time        `json:"issuedAt"`

	Coupon *Coupon `json:"coupon,omitempty"`
}

type CreateTemplateInput struct {
	Name      string          `json:"name" validate:"required"`
	Type      Type            `json:"type" validate:"oneof=0 1"`
	Value     decimal.Decimal `json:"value"`
	MinSpend  decimal.Decimal `json:"minSpend"`
	StartTime time.Time       `json:"startTime" validate:"required"`
	EndTime   time.Time       `json:"endTime" validate:"required,gtfield=StartTime"`
}
