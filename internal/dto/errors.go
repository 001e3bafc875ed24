package dto

import "errors"

var (
	// ErrNotFound is returned when a user, watchlist or stock does not exist
	// or is not owned by the requesting user.
	ErrNotFound = errors.New("not found")
	// ErrQuoteUnavailable wraps transport failures and timeouts of the quote source.
	ErrQuoteUnavailable = errors.New("quote source unavailable")
	// ErrNoMarketPrice is returned when the quote source answered without a usable price.
	ErrNoMarketPrice = errors.New("quote has no market price")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrValidation    = errors.New("validation failed")
)
