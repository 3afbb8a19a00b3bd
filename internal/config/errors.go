// internal/config/errors.go
//
// Error taxonomy for configuration resolution.
//
// Context
// -------
// Every resolution failure is classified into one of four sentinel classes
// so callers can branch with errors.Is while the message still names the
// exact field and value that failed.  FieldError is the carrier pairing a
// sentinel with that detail.
//
// Serving-time errors do not live here.  The only error the request path
// can produce is policy.ErrOutOfRoot, and it never terminates the process;
// resolution errors always do.

package config

import (
	"errors"
	"fmt"
)

//
// sentinel classes
//

var (
	// ErrInvalidCombination marks fields that are individually fine but do
	// not hold together, currently only ok without not_found.
	ErrInvalidCombination = errors.New("requires not_found to be set")

	// ErrIncompleteTLS marks a TLS section missing cert or key.
	ErrIncompleteTLS = errors.New("incomplete tls section")

	// ErrPathNotFound marks a configured filesystem path that does not
	// exist or is the wrong kind, a directory where a file is needed.
	ErrPathNotFound = errors.New("path not found")

	// ErrParse marks input that could not be read as configuration:
	// broken TOML, a malformed address literal, an unknown log level.
	ErrParse = errors.New("parse failure")
)

//
// field-level carrier
//

// FieldError pairs a sentinel with the config key that caused it and, when
// one exists, the offending value.  Matched with errors.Is against the
// sentinels above.
type FieldError struct {
	Field string // config key as the user types it, e.g. "tls.cert"
	Value string // offending value, usually a filesystem path; may be empty
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("config: %s: %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// fieldErr is the construction site for every classified failure.
func fieldErr(field, value string, class error) error {
	return &FieldError{Field: field, Value: value, Err: class}
}
