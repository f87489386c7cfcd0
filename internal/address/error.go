package address

import "bakery-be/internal/apperr"

var (
	ErrAddressNotFound = apperr.NotFound("address not found")
	ErrInvalidAddress  = apperr.Invalid("contact name, phone and detail are required")
)
