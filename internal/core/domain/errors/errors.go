package errors

import (
	"errors"
	"fmt"
)

type InvalidStateError struct {
	msg string
}

func NewInvalidStateError(msg string) *InvalidStateError {
	return &InvalidStateError{msg: msg}
}

func (e *InvalidStateError) Error() string {
	return e.msg
}

type NilArgumentError struct {
	argument string
}

func NewNilArgumentError(argument string) *NilArgumentError {
	return &NilArgumentError{argument: argument}
}

func (e *NilArgumentError) Error() string {
	return fmt.Sprintf("argument '%s' must not be nil", e.argument)
}

var ErrDependencyFailure = errors.New("dependency failure")

// DependencyFailureError reports that the store or an outbound channel
// could not complete the call (unreachable, timed out, rejected).
type DependencyFailureError struct {
	Dependency string
	Err        error
}

func NewDependencyFailureError(dependency string, err error) *DependencyFailureError {
	return &DependencyFailureError{Dependency: dependency, Err: err}
}

func (e *DependencyFailureError) Error() string {
	return fmt.Sprintf("%s failure: %v", e.Dependency, e.Err)
}

func (e *DependencyFailureError) Unwrap() error {
	return e.Err
}

func (e *DependencyFailureError) Is(target error) bool {
	return target == ErrDependencyFailure
}
