package coupon

import "bakery-be/internal/apperr"

var (
	ErrInvalidName   = apperr.Invalid("coupon name is required")
	ErrInvalidType   = apperr.Invalid("invalid coupon type")
	ErrInvalidValue  = apperr.Invalid("invalid coupon value")
	ErrInvalidWindow = apperr.Invalid("coupon end time must be after start time")

	ErrCouponNotFound    = apperr.NotFound("coupon not found")
	ErrCouponUnavailable = apperr.Rule("coupon unavailable")
	ErrCouponEnded       = apperr.Rule("coupon has ended")
)
