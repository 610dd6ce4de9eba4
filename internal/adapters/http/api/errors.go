package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrServe      = errors.New("http serve failed")
	ErrBadRequest = errors.New("bad request")
	ErrBusy       = errors.New("run already in progress")
)

// OpError records the handler operation an error came from.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	if e.Kind == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error { return &OpError{Op: op, Kind: kind} }

// Wrap attaches op to err.
func Wrap(op string, err error) error { return &OpError{Op: op, Err: err} }

// BadRequest wraps a parameter error so it unwraps to ErrBadRequest.
func BadRequest(op string, err error) error { return &OpError{Op: op, Kind: ErrBadRequest, Err: err} }
