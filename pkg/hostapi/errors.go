package hostapi

import "errors"

// ErrNoSuchVault is raised into a script when it names a vault that is
// not currently open (not autoloaded and never produced this session).
var ErrNoSuchVault = errors.New("hostapi: no such vault")

// ErrWrongUserdata is raised when a binding method is called with self
// bound to the wrong host type, which only happens if a script stores
// and replays a raw userdata value across incompatible metatables.
var ErrWrongUserdata = errors.New("hostapi: wrong userdata type")
