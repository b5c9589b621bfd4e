package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrMalformedExpression = errors.New("malformed expression")
	ErrNotFound            = errors.New("not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrStoreUnavailable    = errors.New("store unavailable")
)
