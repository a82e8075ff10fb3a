package service

import "errors"

var (
	// ErrSessionExpired is returned when the backend rejected the stored token.
	// The session has already been cleared when a caller sees it.
	ErrSessionExpired = errors.New("session expired")
	// ErrBusy is returned while the same operation is still in flight.
	ErrBusy = errors.New("operation already in progress")

	ErrProfileIndex = errors.New("profile index out of range")
	ErrUnknownField = errors.New("unknown profile field")
	ErrInvalidField = errors.New("invalid field value")
	ErrImageField   = errors.New("unknown image field")

	// ErrNoPublicID means the profile has never been saved and has no public link yet.
	ErrNoPublicID = errors.New("profile has no public identifier yet")

	ErrNotLoaded          = errors.New("profile is not loaded")
	ErrEmptyMessage       = errors.New("message is required")
	ErrProfileUnavailable = errors.New("public profile unavailable")
)
