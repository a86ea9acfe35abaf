package service

import "errors"

var (
	// ErrInvalidInput is wrapped with a detail message, e.g. fmt.Errorf("%w: rating must be 1-5", ErrInvalidInput)
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	ErrVariantUnavailable      = errors.New("variant is not available for sale")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrOrderNotCancellable     = errors.New("order can no longer be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrReviewNotAllowed        = errors.New("only delivered items of your own orders can be reviewed")
)
