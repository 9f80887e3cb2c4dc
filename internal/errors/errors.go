// Package errors wraps github.com/go-errors/errors so that errors leaving
// the library carry the stack of their origin.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"syscall"

	errorsGo "github.com/go-errors/errors"
)

var ErrUnsupported = errors.ErrUnsupported

func As(err error, target any) bool { return errorsGo.As(err, target) }

func Is(err, target error) bool { return errorsGo.Is(err, target) }

func Join(errs ...error) error {
	if err := errorsGo.Join(errs...); err != nil {
		if errGo, okErrGo := err.(*errorsGo.Error); okErrGo {
			return errGo
		}
		return errorsGo.Wrap(err, 1)
	}
	return nil
}

// New wraps obj with the stack of the caller.
// Unlike github.com/go-errors/errors.New() it returns nil for nil and keeps
// the origin of errors that already carry a stack.
func New(obj any) *Error {
	if obj == nil {
		return nil
	}
	if errGo, okErrGo := obj.(*errorsGo.Error); okErrGo {
		return errGo
	}
	return errorsGo.Wrap(obj, 1)
}

// Wrap is New for the error interface: a nil err stays an untyped nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errGo, okErrGo := err.(*errorsGo.Error); okErrGo {
		return errGo
	}
	return errorsGo.Wrap(err, 1)
}

// WithCause returns an error matching both kind and cause with Is.
// A nil cause returns kind with a stack.
func WithCause(kind, cause error) error {
	if cause == nil {
		return errorsGo.Wrap(kind, 1)
	}
	return errorsGo.Wrap(fmt.Errorf(`%w: %w`, kind, cause), 1)
}

// Errno extracts the kernel error number from err.
func Errno(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errorsGo.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

func Unwrap(err error) error { return errorsGo.Unwrap(err) }

type Error = errorsGo.Error

func Errorf(format string, a ...interface{}) *Error { return errorsGo.Errorf(format, a...) }

// NilReceiver returns an error with the function name if any of the arguments are nil
func NilReceiver(args ...any) error {
	return errMsgNilTester(`nil receiver or struct field`, 3, args...)
}

// NilParam returns an error with the function name if any of the arguments are nil
func NilParam(args ...any) error {
	return errMsgNilTester(`nil parameter`, 3, args...)
}

func errMsgNilTester(msg string, skip int, args ...any) error {
	for i := range args {
		if args[i] == nil {
			goto anyNil
		}
	}
	if len(args) > 0 {
		return nil
	}
anyNil:
	return errMsg(msg, skip)
}

func errMsg(msg string, skip int) error {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return errorsGo.Wrap(msg, skip)
	}
	return errorsGo.Wrap(msg+`: `+runtime.FuncForPC(pc).Name()+`()`, skip)
}
