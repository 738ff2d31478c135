package links

import "errors"

var (
	ErrNotFound      = errors.New("payment link not found")
	ErrInvalidStatus = errors.New("invalid payment link status")
)
