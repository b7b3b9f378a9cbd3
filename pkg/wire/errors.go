package wire

import "errors"

// ErrProtocolError marks a malformed frame or HTTP request: the
// connection terminates rather than retrying.
var ErrProtocolError = errors.New("wire: protocol error")
