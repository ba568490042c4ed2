package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations. Backends must
// translate every failure into one of these kinds; raw driver errors are
// never returned unwrapped.
var (
	// ErrNotFound is returned when no entity matches the requested id and filter.
	// An entity that exists but is excluded by the filter is indistinguishable
	// from one that does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation would violate a uniqueness
	// constraint (e.g., two clients with the same encoded token).
	ErrConflict = errors.New("entity already exists")

	// ErrStorage is returned for any other storage fault. The transaction the
	// operation ran in has been rolled back when this is returned.
	ErrStorage = errors.New("storage error")

	// ErrInvalidFilter is returned when a filter or change set references a
	// field the entity schema does not declare.
	ErrInvalidFilter = errors.New("invalid filter")

	// Entity-specific errors

	// ErrClientNotFound indicates that the requested client does not exist in the store.
	ErrClientNotFound = fmt.Errorf("%w: client", ErrNotFound)

	// ErrPostNotFound indicates that the requested post does not exist in the store.
	ErrPostNotFound = fmt.Errorf("%w: post", ErrNotFound)

	// ErrTokenExists indicates that a client with the same encoded token already exists.
	ErrTokenExists = fmt.Errorf("%w: token", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is any kind of uniqueness conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
