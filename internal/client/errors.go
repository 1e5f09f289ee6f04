package client

import "errors"

var (
	// ErrUnavailable covers transport failures and 5xx responses.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is a terminal authorization failure (the retried
	// request still came back 401/403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired means the refresh attempt itself failed; callers
	// must clear the session and force re-authentication.
	ErrSessionExpired = errors.New("session expired")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
)
