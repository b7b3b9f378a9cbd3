// Package auth implements the authentication registry: a global
// provider map keyed by a deterministic identifier
// (namespace "auth_provider", name the provider's short name), where
// each Provider exposes named AuthMethods that turn a credentials
// document into an authenticated User, or fail with ErrUserNotFound or
// ErrBadCredential.
//
// The built-in local provider's bcrypt method stores only a salted
// hash of each login's password (golang.org/x/crypto/bcrypt) rather
// than the password itself.
package auth
