package index

import "errors"

// ErrUnsupportedOperation is returned by Greater/Lesser on a non-ordered
// index.
var ErrUnsupportedOperation = errors.New("index: unsupported operation")

// ErrUniqueConstraintViolation is returned by Place on a unique index
// when the key is already bound to a different identifier.
var ErrUniqueConstraintViolation = errors.New("index: unique constraint violation")
