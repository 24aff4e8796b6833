package crypto

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every concrete error below unwraps to exactly one of them,
// so callers can branch with errors.Is and never confuse caller mistakes with
// engine defects.
var (
	// ErrInvalidArgument indicates a missing or malformed caller argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidKey indicates a key that is not a permutation of the alphabet.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvariantViolation indicates an internal defect: the state matrix
	// lost a symbol that it must contain by construction.
	ErrInvariantViolation = errors.New("internal invariant violation")

	// ErrKeyStoreAuth indicates that a stored key failed authentication,
	// usually because the master password is wrong.
	ErrKeyStoreAuth = errors.New("key store authentication failed")
)

// ArgumentError reports a bad caller argument and names the parameter.
type ArgumentError struct {
	Param  string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	msg := fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func (e *ArgumentError) Unwrap() error { return e.Err }

// KeyError reports a key that failed validation. The message carries the
// submitted key and the canonical alphabet verbatim.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid key: '%s'. expected a shuffled version of '%s'", e.Key, CanonicalAlphabet)
}

// Is matches ErrInvalidKey.
func (e *KeyError) Is(target error) bool { return target == ErrInvalidKey }

// InvariantError reports a symbol lookup that failed inside the engine.
type InvariantError struct {
	Op     string
	Symbol byte
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: symbol %q not found during %s, expected a symbol of '%s'",
		ErrInvariantViolation, e.Symbol, e.Op, Alphabet)
}

// Is matches ErrInvariantViolation.
func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }
