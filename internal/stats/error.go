package stats

import "bakery-be/internal/apperr"

var (
	ErrInvalidRange = apperr.Invalid("invalid date range")
	ErrRangeTooWide = apperr.Invalid("date range is limited to 366 days")
	ErrInvalidYear  = apperr.Invalid("invalid year")
)
