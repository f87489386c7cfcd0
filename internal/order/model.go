package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

func (d DeliveryType) Valid() bool {
	return d == DeliveryPickup || d == DeliveryDelivery
}

type PaymentType string

const (
	PaymentNone    PaymentType = ""
	PaymentPoints  PaymentType = "points"
	PaymentOffline PaymentType = "offline"
)

// Item is a snapshot of what was sold. It does not follow later catalogue
// changes.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	SpecID    string          `json:"specId"`
	Name      string          `json:"name"`
	SpecName  string          `json:"specName"`
	ImageURL  string          `json:"imageUrl"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID           string       `json:"id"`
	OrderNo      string       `json:"orderNo"`
	UserID       string       `json:"userId"`
	Status       Status       `json:"status"`
	DeliveryType DeliveryType `json:"deliveryType"`

	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	Address      string `json:"address"`
	Remark       string `json:"remark"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Discount    decimal.Decimal `json:"discount"`
	PayAmount   decimal.Decimal `json:"payAmount"`

	UserCouponID   *string     `json:"userCouponId,omitempty"`
	PaymentType    PaymentType `json:"paymentType"`
	PointsDeducted int64       `json:"pointsDeducted"`
	CancelReason   string      `json:"cancelReason,omitempty"`

	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	PackStartTime *time.Time `json:"packStartTime,omitempty"`
	PackEndTime   *time.Time `json:"packEndTime,omitempty"`
	DispatchedAt  *time.Time `json:"dispatchedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	RefundedAt    *time.Time `json:"refundedAt,omitempty"`

	Items []Item `json:"items"`
}

type ItemInput struct {
	ProductID string `json:"productId"`
	SpecID    string `json:"specId"`
	Quantity  int    `json:"quantity"`
}

type CreateInput struct {
	UserID       string       `json:"-"`
	Items        []ItemInput  `json:"items"`
	DeliveryType DeliveryType `json:"deliveryType"`
	AddressID    string       `json:"addressId"`
	UserCouponID string       `json:"userCouponId"`
	Remark       string       `json:"remark" validate:"max=200"`
	// RequestID makes a submit idempotent when set.
	RequestID string `json:"requestId"`
}

type CreateResult struct {
	OrderID      string          `json:"orderId"`
	OrderNo      string          `json:"orderNo"`
	PayAmount    decimal.Decimal `json:"payAmount"`
	PointsEnough bool            `json:"pointsEnough"`
}

type PayResult struct {
	OrderID        string `json:"orderId"`
	PointsDeducted int64  `json:"pointsDeducted"`
	PointsBalance  int64  `json:"pointsBalance"`
}

type ListFilter struct {
	UserID       string
	Status       *Status
	DeliveryType DeliveryType
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

// Patch describes one guarded status update. Nil fields are left unchanged.
type Patch struct {
	Status         Status
	PaymentType    *PaymentType
	PointsDeducted *int64
	CancelReason   *string
	PaidAt         *time.Time
	PackStartTime  *time.Time
	PackEndTime    *time.Time
	DispatchedAt   *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	RefundedAt     *time.Time
}
