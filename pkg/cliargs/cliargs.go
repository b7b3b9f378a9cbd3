// Package cliargs adds the two error-reporting behaviors the original
// command-line argument parser carried that pflag leaves to the caller:
// a descriptive error when a required flag was never set, and an
// Invalid-Argument error naming the offending token when parsing
// rejects an unrecognized one. Self-assigned ("--key=value") versus
// space-separated ("--key value") flags and accumulating list flags
// are both native pflag behavior (the latter via StringArray/
// StringSlice) and are not reimplemented here.
package cliargs

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// MissingArgumentError reports that a required flag was never set on
// the command line.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument: %s is required", e.Name)
}

// InvalidArgumentError reports that a command-line token was not
// recognized as any declared flag.
type InvalidArgumentError struct {
	Token string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("doesn't know how to deal with %s", e.Token)
}

// CheckRequired reports a *MissingArgumentError for the first name in
// required that fs.Changed reports false for — the flag was declared
// but never set, whether or not it carries a default value. Names are
// checked in the order given.
func CheckRequired(fs *pflag.FlagSet, required ...string) error {
	for _, name := range required {
		if !fs.Changed(name) {
			return &MissingArgumentError{Name: name}
		}
	}
	return nil
}

// WrapParseError rewrites a pflag parse error that rejected an
// unrecognized flag into an *InvalidArgumentError naming the token
// verbatim, the way the original parser's "doesn't know how to deal
// with" message did. Errors pflag raised for any other reason (a
// malformed value for a flag it does recognize, for instance) are
// returned unchanged.
func WrapParseError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	token, ok := unknownFlagToken(msg)
	if !ok {
		return err
	}
	return &InvalidArgumentError{Token: token}
}

// unknownFlagToken extracts the offending token from pflag's
// "unknown flag: --foo" / "unknown shorthand flag: 'f' in -foo"
// error messages.
func unknownFlagToken(msg string) (string, bool) {
	const longPrefix = "unknown flag: "
	if strings.HasPrefix(msg, longPrefix) {
		return strings.TrimPrefix(msg, longPrefix), true
	}
	const shortPrefix = "unknown shorthand flag: "
	if strings.HasPrefix(msg, shortPrefix) {
		rest := strings.TrimPrefix(msg, shortPrefix)
		if idx := strings.LastIndex(rest, " in "); idx >= 0 {
			return rest[idx+len(" in "):], true
		}
		return rest, true
	}
	return "", false
}
