package order

import "bakery-be/internal/apperr"

var (
	// -- Validation & Input --
	ErrEmptyCart           = apperr.Invalid("cart is empty")
	ErrInvalidItem         = apperr.Invalid("each item needs a product and a positive quantity")
	ErrInvalidDeliveryType = apperr.Invalid("delivery type must be pickup or delivery")
	ErrAddressRequired     = apperr.Invalid("delivery address is required")
	ErrInvalidStatus       = apperr.Invalid("invalid order status")
	ErrUseCancel           = apperr.Invalid("use the cancel operation to cancel an order")

	// -- Resource State --
	ErrOrderNotFound      = apperr.NotFound("order not found")
	ErrInKitchen          = apperr.Rule("order is being prepared, please contact customer service")
	ErrNotCancellable     = apperr.Rule("order cannot be cancelled")
	ErrNotPendingPay      = apperr.Rule("order is not awaiting payment")
	ErrInsufficientPoints = apperr.Rule("insufficient points")
	ErrInvalidTransition  = apperr.Rule("status change not allowed")
	ErrNotDelivery        = apperr.Rule("order is not a delivery order")
	ErrPackingNotStarted  = apperr.Rule("packing has not started")
	ErrAlreadyPacked      = apperr.Rule("order is already packed")

	// -- Concurrency --
	ErrStatusChanged   = apperr.Conflict("order status changed, please refresh")
	ErrDuplicateSubmit = apperr.Conflict("duplicate submit")
)
