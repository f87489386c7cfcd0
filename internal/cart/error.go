package cart

import "bakery-be/internal/apperr"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = apperr.Invalid("invalid cart quantity")

	// -- Resource State --
	ErrCartItemNotFound  = apperr.NotFound("cart item not found")
	ErrInsufficientStock = apperr.Rule("insufficient stock")
	ErrProductOffShelf   = apperr.Rule("product is off the shelf")
)
