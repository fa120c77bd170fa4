// Package common provides shared types and utilities used across the
// gatehouse packages.
//
// # Error Handling
//
// The [Error] type provides structured error information for registry,
// storage, and evaluation failures, carrying a [Kind] that maps onto
// gRPC status codes at the RPC boundary.
package common

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
)

// Kind classifies the failure modes a gatehouse component can report.
type Kind int

const (
	// KindInvalidArgument indicates a malformed or semantically invalid request.
	KindInvalidArgument Kind = iota
	// KindAlreadyExists indicates an attempt to create an entity that already exists.
	KindAlreadyExists
	// KindNotFound indicates a referenced entity does not exist.
	KindNotFound
	// KindReferenceMissing indicates an operation referenced an entity
	// (a group or a role) that must exist but does not.
	KindReferenceMissing
	// KindStorageUnavailable indicates the storage driver could not complete
	// a load, apply, or watch operation.
	KindStorageUnavailable
	// KindInternal indicates an unexpected, non-classifiable failure.
	KindInternal
)

// String returns a lowercase, hyphenated name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindAlreadyExists:
		return "already-exists"
	case KindNotFound:
		return "not-found"
	case KindReferenceMissing:
		return "reference-missing"
	case KindStorageUnavailable:
		return "storage-unavailable"
	default:
		return "internal"
	}
}

// Code returns the gRPC status code that corresponds to the kind.
func (k Kind) Code() codes.Code {
	switch k {
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindAlreadyExists:
		return codes.AlreadyExists
	case KindNotFound:
		return codes.NotFound
	case KindReferenceMissing:
		return codes.FailedPrecondition
	case KindStorageUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// Error represents an error encountered during administration, storage, or
// evaluation in gatehouse. It carries a [Kind] classification so callers at
// the RPC boundary can map it to a gRPC status without string matching.
type Error struct {
	Kind   Kind
	Reason string
	// Cause is the underlying error, if any, preserved for unwrapping.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Reason, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Reason, e.Kind)
}

// Unwrap returns the wrapped cause, if any, for use with errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an [Error] with the given kind and message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Reason: msg}
}

// Wrap creates an [Error] with the given kind, message, and underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Reason: msg, Cause: cause}
}

// Status converts err into a [status.Status] suitable for returning at an
// RPC boundary. A nil error produces an OK status. Errors that are not an
// [*Error] are reported as KindInternal.
func Status(err error) *status.Status {
	if err == nil {
		return &status.Status{Code: int32(codes.OK)}
	}

	var gatehouseErr *Error
	if e, ok := err.(*Error); ok {
		gatehouseErr = e
	} else {
		gatehouseErr = &Error{Kind: KindInternal, Reason: err.Error()}
	}

	return &status.Status{
		Code:    int32(gatehouseErr.Kind.Code()),
		Message: gatehouseErr.Error(),
	}
}
