package model

import "errors"

var (
	// ErrNotFound means an unknown symbol or an empty dataset where data is required.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameter means a malformed request, such as an unknown period tag.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnavailable is recoverable; the caller may retry.
	ErrUnavailable = errors.New("unavailable")
	// ErrCorrupt means stored data violates an invariant. The dataset should be regenerated.
	ErrCorrupt = errors.New("corrupt dataset")
)
