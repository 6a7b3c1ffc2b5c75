package ident

import (
	"errors"
	"fmt"
)

// Common errors shared by the registry and the metadata fetchers.
var (
	// ErrDuplicateKind indicates a kind name was registered twice.
	ErrDuplicateKind = errors.New("identifier kind already registered")

	// ErrUnknownKind indicates a lookup for a name nobody registered.
	ErrUnknownKind = errors.New("unknown identifier kind")

	// ErrNotFound indicates the metadata source has no record for the identifier.
	ErrNotFound = errors.New("no record found for identifier")

	// ErrRateLimited indicates the metadata source rejected the request for quota.
	ErrRateLimited = errors.New("metadata source rate limit exceeded")

	// ErrNetworkError indicates a connectivity problem reaching the source.
	ErrNetworkError = errors.New("network error reaching metadata source")

	// ErrInvalidResponse indicates the source answered with something unusable.
	ErrInvalidResponse = errors.New("invalid response from metadata source")
)

// APIError represents an HTTP-level error from a metadata source.
type APIError struct {
	Source     string // which remote API, e.g. "doi.org"
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d)", e.Source, e.StatusCode)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// CheckResponse maps an HTTP status from source to the shared error
// taxonomy, nil for 2xx.
func CheckResponse(source string, statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == 404:
		return fmt.Errorf("%w: %s status %d", ErrNotFound, source, statusCode)
	case statusCode == 429:
		return fmt.Errorf("%w: %s status %d", ErrRateLimited, source, statusCode)
	default:
		return &APIError{Source: source, StatusCode: statusCode}
	}
}
