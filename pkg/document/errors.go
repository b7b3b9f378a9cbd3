package document

import "errors"

// ErrMalformed is returned by Decode when the input is truncated, has a
// bad length prefix, carries an unknown type tag, or a string payload
// that is not valid UTF-8.
var ErrMalformed = errors.New("document: malformed document")
