package stereoproj

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a source image or parameter set that Project
	// refuses before doing any pixel work.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCancelled is returned when the context is done before the last row.
	// No image accompanies it.
	ErrCancelled = errors.New("projection cancelled")
	// ErrCompute marks a non-finite intermediate inside the pixel loop.
	ErrCompute = errors.New("compute failure")
)

// InputError names the offending field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, format string, args ...interface{}) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ComputeError carries the output pixel and the stage that went wrong.
type ComputeError struct {
	X, Y  int
	Stage string
	Value float64
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute failure at pixel (%d, %d), stage %s: value %v", e.X, e.Y, e.Stage, e.Value)
}

func (e *ComputeError) Is(target error) bool { return target == ErrCompute }

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
