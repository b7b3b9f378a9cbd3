package auth

import "errors"

// ErrUserNotFound is returned when a credentials document names a login
// the provider has no record of.
var ErrUserNotFound = errors.New("auth: user not found")

// ErrBadCredential is returned when a login is known but the supplied
// secret does not match its stored hash.
var ErrBadCredential = errors.New("auth: bad credential")

// ErrUnknownProvider is returned when a credentials document names a
// provider the registry has no record of.
var ErrUnknownProvider = errors.New("auth: unknown provider")

// ErrUnknownMethod is returned when a credentials document names a
// method the resolved provider does not expose.
var ErrUnknownMethod = errors.New("auth: unknown method")
