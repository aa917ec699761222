package rowset

import "errors"

var (
	ErrAlreadyPresent  = errors.New("rowset: row already present")
	ErrNotFound        = errors.New("rowset: row not found")
	ErrNotSupported    = errors.New("rowset: operation not supported")
	ErrInvalidArgument = errors.New("rowset: invalid argument")
)
