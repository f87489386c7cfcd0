package product

import "bakery-be/internal/apperr"

var (
	// -- Validation & Input --
	ErrInvalidName   = apperr.Invalid("product name is required")
	ErrInvalidPrice  = apperr.Invalid("price must not be negative")
	ErrInvalidStatus = apperr.Invalid("invalid product status")

	// -- Resource State --
	ErrProductNotFound   = apperr.NotFound("product not found")
	ErrSpecNotFound      = apperr.NotFound("product spec not found")
	ErrProductOffShelf   = apperr.Rule("product is off the shelf")
	ErrInsufficientStock = apperr.Rule("insufficient stock")
)
