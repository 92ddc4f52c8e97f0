// Package fault provides categorized errors and retry with exponential
// backoff for operations that cross process boundaries (HTTP calls, scans
// over network filesystems).
package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
)

// Category classifies an error for retry and reporting decisions.
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryTimeout    Category = "timeout"
	CategoryValidation Category = "validation"
	CategoryRateLimit  Category = "rate_limit"
	CategoryPermission Category = "permission"
	CategoryNotFound   Category = "not_found"
	CategoryInternal   Category = "internal"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Retryable reports whether errors in this category are worth retrying.
func (c Category) Retryable() bool {
	switch c {
	case CategoryNetwork, CategoryTimeout, CategoryRateLimit, CategoryInternal:
		return true
	}
	return false
}

// Error is a categorized error wrapping an underlying cause.
type Error struct {
	Category Category
	Op       string // operation that failed, e.g. "scan django", "POST /v1/ideas"
	Err      error
}

// New returns a categorized error for the given operation and cause.
func New(category Category, op string, err error) *Error {
	return &Error{Category: category, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Category)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Category, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error's category is retryable.
func (e *Error) Retryable() bool {
	return e.Category.Retryable()
}

// CategoryOf returns the category of err, or CategoryInternal when err
// carries no category information.
func CategoryOf(err error) Category {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return categorize(err)
}

// Retryable reports whether err should be retried.
func Retryable(err error) bool {
	return CategoryOf(err).Retryable()
}

// FromStatus maps an HTTP status code to a category. Status codes below 400
// map to CategoryInternal; callers should not pass them.
func FromStatus(code int) Category {
	switch {
	case code == http.StatusTooManyRequests:
		return CategoryRateLimit
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return CategoryTimeout
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return CategoryPermission
	case code == http.StatusNotFound:
		return CategoryNotFound
	case code >= 400 && code < 500:
		return CategoryValidation
	case code >= 500:
		return CategoryInternal
	}
	return CategoryInternal
}

// categorize inspects well-known error types from the standard library.
func categorize(err error) Category {
	switch {
	case err == nil:
		return CategoryInternal
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, os.ErrNotExist):
		return CategoryNotFound
	case errors.Is(err, os.ErrPermission):
		return CategoryPermission
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}
	return CategoryInternal
}
