package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"maps"
)

// PlatformError is an error carrying an ErrorCode and optional context.
type PlatformError interface {
	error

	// Code returns the classification of the error.
	Code() ErrorCode

	// Context returns key/value details attached when the error was raised.
	Context() map[string]interface{}
}

type codedError struct {
	code    ErrorCode
	message string
	context map[string]interface{}
	err     error
}

func (e *codedError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *codedError) Code() ErrorCode { return e.code }

func (e *codedError) Context() map[string]interface{} { return e.context }

func (e *codedError) Unwrap() error { return e.err }

// New returns a PlatformError with the given code and message. Values
// returned by New are suitable as package-level sentinels.
//
//nolint:ireturn // the interface is the public error contract.
func New(code ErrorCode, message string) PlatformError {
	return &codedError{code: code, message: message}
}

// Wrap attaches a code and message to err. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	return WrapWithContext(err, code, message, nil)
}

// WrapWithContext attaches a code, a message and key/value context to err.
// The wrapped error stays reachable through errors.Is and errors.As.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &codedError{
		code:    code,
		message: message,
		context: maps.Clone(ctx),
		err:     err,
	}
}

// CodeOf returns the outermost code found in err's chain. Context
// cancellation maps to CodeCanceled and uncoded errors to CodeUnknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var pe PlatformError
	if As(err, &pe) {
		return pe.Code()
	}
	if Is(err, context.Canceled) || Is(err, context.DeadlineExceeded) {
		return CodeCanceled
	}
	return CodeUnknown
}

// ContextOf merges the context of every PlatformError in err's chain.
// Outer values win over inner ones.
func ContextOf(err error) map[string]interface{} {
	out := map[string]interface{}{}
	var chain []PlatformError
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if pe, ok := e.(PlatformError); ok {
			chain = append(chain, pe)
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		maps.Copy(out, chain[i].Context())
	}
	return out
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }
