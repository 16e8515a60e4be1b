package domain

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidLimit  = errors.New("limit must be a positive integer")
	ErrInvalidAction = errors.New("unknown feedback action")

	// ErrNoSources is returned when every scorer failed transiently during a
	// generation. It is distinct from an empty result, which means the user
	// has simply seen everything the sources could offer.
	ErrNoSources = errors.New("no recommendation sources available")
)
