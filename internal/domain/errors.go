package domain

import "errors"

var (
	// ErrUnauthenticated is returned when an operation needs a signed-in user.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrAuthorizationDenied covers ownership mismatches enforced by the store.
	ErrAuthorizationDenied = errors.New("authorization denied")

	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// ErrTransport wraps network or provider failures from the store or notifier.
	ErrTransport = errors.New("transport failure")
)
