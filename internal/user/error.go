package user

import "bakery-be/internal/apperr"

var (
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrInsufficientPoints = apperr.Rule("insufficient points")
	ErrInvalidCredentials = apperr.Forbidden("invalid username or password")
)
