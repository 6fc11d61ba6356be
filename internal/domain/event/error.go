package event

import "errors"

var (
	ErrNotFound    = errors.New("event not found")
	ErrInvalidData = errors.New("invalid event data")
)
