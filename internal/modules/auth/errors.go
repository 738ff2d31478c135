package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactive           = errors.New("operator account is inactive")
	ErrDuplicate          = errors.New("username or email already registered")
	ErrUnauthorized       = errors.New("invalid authentication credentials")
	ErrNotFound           = errors.New("operator not found")
	ErrInvalidInput       = errors.New("invalid operator input")
)
