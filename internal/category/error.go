package category

import "bakery-be/internal/apperr"

var (
	ErrCategoryNotFound = apperr.NotFound("category not found")
	ErrInvalidName      = apperr.Invalid("category name is required")
	ErrDuplicateName    = apperr.Conflict("a category with this name already exists")
)
