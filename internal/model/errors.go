package model

import (
	"errors"
	"fmt"
)

// ConsistencyError reports a violated precondition or integrity constraint.
//
// It is the only error type produced by this package. Operations that fail
// with a ConsistencyError have no effect beyond what their documentation
// states; nothing is retried or repaired internally.
type ConsistencyError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed (e.g. "VocabList.AddElement").
	Op string

	// Message is a human-readable description.
	Message string

	// ID identifies the offending entity, if any.
	ID ID
}

// ErrorCode categorizes consistency errors.
type ErrorCode string

const (
	// ErrCodeNilArgument indicates a required argument was nil or empty.
	ErrCodeNilArgument ErrorCode = "NIL_ARGUMENT"

	// ErrCodeInvalidID indicates an ID was InvalidID where a real ID is required,
	// or did not match the entity it was paired with.
	ErrCodeInvalidID ErrorCode = "INVALID_ID"

	// ErrCodeNotFound indicates an ID or name is not present.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAlreadyIndexed indicates an entity already carries an ID.
	ErrCodeAlreadyIndexed ErrorCode = "ALREADY_INDEXED"

	// ErrCodeDuplicate indicates a name or value collision.
	ErrCodeDuplicate ErrorCode = "DUPLICATE"

	// ErrCodeDBMismatch indicates entities from different databases were mixed.
	ErrCodeDBMismatch ErrorCode = "DB_MISMATCH"

	// ErrCodeKindMismatch indicates the concrete kind of an entity or value is wrong.
	ErrCodeKindMismatch ErrorCode = "KIND_MISMATCH"

	// ErrCodeMalformedName indicates a name failed its syntax rule.
	ErrCodeMalformedName ErrorCode = "MALFORMED_NAME"

	// ErrCodeSubRangeDisabled indicates a range or approved-set call on an
	// argument whose sub-range is off.
	ErrCodeSubRangeDisabled ErrorCode = "SUBRANGE_DISABLED"

	// ErrCodeNotSupported indicates the argument kind lacks the capability.
	ErrCodeNotSupported ErrorCode = "NOT_SUPPORTED"

	// ErrCodeIllFormed indicates a structurally invalid entity.
	ErrCodeIllFormed ErrorCode = "ILL_FORMED"

	// ErrCodeInvalidValue indicates a value outside its kind's domain.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeOutOfRange indicates a position or bound outside the legal range.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	if e.ID != InvalidID {
		return fmt.Sprintf("%s: %s: %s (id=%d)", e.Code, e.Op, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

// IsConsistencyError returns true if err is or wraps a ConsistencyError.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

// HasCode returns true if err is or wraps a ConsistencyError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce *ConsistencyError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newError(code ErrorCode, op, format string, args ...any) *ConsistencyError {
	return &ConsistencyError{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

func newIDError(code ErrorCode, op string, id ID, format string, args ...any) *ConsistencyError {
	e := newError(code, op, format, args...)
	e.ID = id
	return e
}
