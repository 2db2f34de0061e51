package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// RateLimitError rejects a request before validation; Remaining is echoed
// to the client as a hint.
type RateLimitError struct {
	Remaining int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, %d attempts remaining", e.Remaining)
}

// ValidationError carries the per-field messages of a failed checkout
// validation.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed for %d fields", len(e.Fields))
}
