package auth

import "errors"

// Common authentication errors
var (
	// ErrAuthenticationRequired indicates no credential was presented.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAuthenticationFailed indicates a credential was presented but does
	// not identify a client or is not whitelisted. Malformed and unknown
	// credentials both produce this error.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidToken indicates an encoded token is malformed, was signed with
	// a different key, or has been tampered with.
	ErrInvalidToken = errors.New("invalid token")
)
