package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Requests failing validation never reach dispatch.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown backend or store driver.
	ErrUnsupportedType = errors.New("unsupported type")

	// Search Errors.

	// ErrCatalogUnavailable indicates the resource listing failed or was empty.
	// It is surfaced as an empty result with an error note, never as a failure.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrResourceRead indicates a single resource could not be streamed.
	// The resource contributes zero results; the search continues.
	ErrResourceRead = errors.New("resource read failed")

	// ErrInternal indicates an unexpected failure inside a worker task.
	ErrInternal = errors.New("internal error")

	// ErrSearchUnavailable indicates no search backend is configured.
	ErrSearchUnavailable = errors.New("search backend unavailable")

	// ErrIndexUnavailable indicates the indexed store is not configured.
	ErrIndexUnavailable = errors.New("index store unavailable")

	// ErrStoreNotConfigured indicates object store credentials are missing.
	ErrStoreNotConfigured = errors.New("object store not configured")

	// Gate Errors.

	// ErrUnauthorized indicates the shared secret check failed.
	ErrUnauthorized = errors.New("invalid bridge secret")

	// ErrForbidden indicates the request origin is not allowed.
	ErrForbidden = errors.New("origin not allowed")

	// ErrRateLimited indicates the request rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// NoDataFilesMessage is the error note returned when the catalog is empty.
const NoDataFilesMessage = "No data files found"
