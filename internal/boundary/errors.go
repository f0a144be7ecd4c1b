package boundary

import (
	"errors"

	"github.com/okian/refxpp/internal/domain/model"
	"github.com/okian/refxpp/internal/domain/perf"
)

// Failure kinds reported across the boundary.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrComputation  = errors.New("computation failed")
)

// Error is a classified boundary failure. Both Kind and Err match errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalid(op string, err error) error {
	return &Error{Op: op, Kind: ErrInvalidInput, Err: err}
}

// classify wraps err with the kind it belongs to.
func classify(op string, err error) error {
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	if errors.Is(err, model.ErrInvalidMode) ||
		errors.Is(err, model.ErrInvalidAccuracy) ||
		perf.IsValidation(err) {
		return invalid(op, err)
	}
	return &Error{Op: op, Kind: ErrComputation, Err: err}
}
