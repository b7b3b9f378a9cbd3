package pipeline

import "errors"

// ErrTooManyFailures is returned internally when a connection has
// failed authentication three consecutive times; Run treats it as a
// normal (non-propagated) termination.
var ErrTooManyFailures = errors.New("pipeline: too many authentication failures")

// maxAuthFailures is the number of consecutive Authentication-stage
// failures tolerated before the pipeline terminates the connection
//.
const maxAuthFailures = 3
