// Package errors implements the error taxonomy the storage core distinguishes:
// IoError, KeyNotFound, UnexpectedCommandType, CorruptedData, Deserialize, and
// StringError. It follows the teacher's pattern of a fluent baseError embedded
// into small domain-specific wrapper types (EngineError, ValidationError)
// rather than a flat set of sentinel values, so that a failure can carry the
// key, generation, or offset that produced it without losing its category.
//
// Callers that only need to branch on category use Code(); callers that want
// the offending key or file use the typed accessors on EngineError.
package errors

import (
	stdErrors "errors"
)

// IsEngineError reports whether err is, or wraps, an *EngineError.
func IsEngineError(err error) bool {
	var ee *EngineError
	return stdErrors.As(err, &ee)
}

// AsEngineError extracts an *EngineError from err's chain, if present.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if stdErrors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// Code extracts the ErrorCode from err, if it carries one, defaulting to
// ErrorCodeInternal for errors the package doesn't recognize.
func Code(err error) ErrorCode {
	if ee, ok := AsEngineError(err); ok {
		return ee.Code()
	}
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve.Code()
	}
	return ErrorCodeInternal
}
