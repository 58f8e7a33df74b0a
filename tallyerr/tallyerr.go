// Package tallyerr defines the stable error taxonomy shared by every
// component of the tallying core. Callers distinguish failures by Kind, not
// by Go type, so a storage adapter swap or an internal refactor never
// changes what a caller can match against.
package tallyerr

import (
	"errors"
	"fmt"
)

// Kind identifies a stable category of failure. Kinds are part of the
// core's public contract and must never be renamed once released.
type Kind string

const (
	InvalidArgument      Kind = "InvalidArgument"
	NotFound             Kind = "NotFound"
	InvalidState         Kind = "InvalidState"
	DuplicateTrustee     Kind = "DuplicateTrustee"
	DuplicateBallot      Kind = "DuplicateBallot"
	InsufficientShares   Kind = "InsufficientShares"
	InsufficientTrustees Kind = "InsufficientTrustees"
	InvalidCiphertext    Kind = "InvalidCiphertext"
	TallyInconsistent    Kind = "TallyInconsistent"
	NotAuthorized        Kind = "NotAuthorized"
	Internal             Kind = "Internal"
)

// kindedError wraps an underlying error with a stable Kind. Its Unwrap makes
// errors.Is/As reach the wrapped error; two kindedErrors of the same Kind are
// not errors.Is-equal, so compare kinds with KindOf or IsKind.
type kindedError struct {
	kind Kind
	err  error
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &kindedError{kind: kind, err: fmt.Errorf(format, args...)}
}

// Wrap creates an error of the given kind, wrapping err.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindedError{kind: kind, err: err}
}

func (e *kindedError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *kindedError) Unwrap() error {
	return e.err
}

// Kind returns k's error category.
func (e *kindedError) Kind() Kind {
	return e.kind
}

// KindOf returns the Kind carried by err, or Internal if err was not
// produced by this package.
func KindOf(err error) Kind {
	var ke *kindedError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return Internal
}

// IsKind reports whether err was constructed with the given kind, so callers
// can write IsKind(err, tallyerr.NotFound) where they would otherwise check
// a sentinel with errors.Is.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
