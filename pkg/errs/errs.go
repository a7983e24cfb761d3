// Package errs defines the closed error taxonomy returned across the
// dialog core, so callers can switch on Kind instead of matching ad hoc
// sentinels. Most failures surface as an *errs.Error; the raw
// cas/boltdb backend, artifact's entity constructors, and the CBOR
// decode helpers (revision.Decode, branch.DecodeState) return plain
// errors, for which KindOf reports no Kind.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one member of the closed error taxonomy.
type Kind string

const (
	KindStorage           Kind = "storage"
	KindTree              Kind = "tree"
	KindMalformedIndex    Kind = "malformed_index"
	KindInvalidAttribute  Kind = "invalid_attribute"
	KindInvalidEntity     Kind = "invalid_entity"
	KindInvalidValue      Kind = "invalid_value"
	KindInvalidState      Kind = "invalid_state"
	KindInvalidReference  Kind = "invalid_reference"
	KindEmptySelector     Kind = "empty_selector"
	KindBranchNotFound    Kind = "branch_not_found"
	KindRemoteNotFound    Kind = "remote_not_found"
	KindConflictOnPublish Kind = "conflict_on_publish"
	KindCapabilityDenied  Kind = "capability_denied"
	KindMissingBlock      Kind = "missing_block"
)

// Error is the single error type returned by the core. It always
// carries a Kind from the closed taxonomy above and, for the kinds
// that need structured payload (MissingBlock, ConflictOnPublish),
// the relevant field is set.
type Error struct {
	Kind Kind
	// Hash is set when Kind == KindMissingBlock.
	Hash [32]byte
	// Current is set when Kind == KindConflictOnPublish; it carries the
	// arbitrary opaque "current" value observed at the remote so the
	// caller can pull and retry without a second round trip.
	Current any

	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.msg)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// Is allows errors.Is(err, errs.Kind...) style matching against a bare
// *Error carrying only a Kind (as constructed by Of below).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New builds an *Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// MissingBlock builds the MissingBlock error for a node unreachable
// from storage.
func MissingBlock(hash [32]byte) *Error {
	return &Error{Kind: KindMissingBlock, Hash: hash, msg: fmt.Sprintf("block %x not found", hash)}
}

// ConflictOnPublish builds the recoverable conflict error carrying the
// remote's current value, so the caller can pull-and-retry.
func ConflictOnPublish(current any) *Error {
	return &Error{Kind: KindConflictOnPublish, Current: current, msg: "branch cell advanced concurrently"}
}

// Of returns a matcher suitable for errors.Is(err, errs.Of(KindX)).
func Of(kind Kind) error { return &Error{Kind: kind} }

// KindOf extracts the Kind of err, if err is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
