// Package common - shared error taxonomy and compute configuration for the
// resampling and deconvolution engine.
package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// ShapeError reports incompatible dimensions, e.g. a zero-length axis or a
// kernel whose channel count does not match the image.
type ShapeError struct {
	// Op is the operation that rejected the input.
	Op string
	// Reason is a human readable description of the mismatch.
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape error: %s", e.Op, e.Reason)
}

// NonFiniteError reports a NaN or Inf found at a checkpoint. It is always fatal
// to the call that produced it.
type NonFiniteError struct {
	// Op is the operation that was running.
	Op string
	// Stage names the checkpoint, e.g. "otf" or "denominator".
	Stage string
	// Index is the flat index of the first offending element.
	Index int
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%s: non-finite value at stage %q (index %d)", e.Op, e.Stage, e.Index)
}

// UnsupportedConfigError reports a configuration the engine refuses to run,
// such as a non-cubic kernel family or a scale <= 0.
type UnsupportedConfigError struct {
	Op     string
	Reason string
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("%s: unsupported configuration: %s", e.Op, e.Reason)
}

// NewShapeError returns a *ShapeError carrying a stack trace.
func NewShapeError(op, format string, args ...interface{}) error {
	return errors.WithStack(&ShapeError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// NewNonFiniteError returns a *NonFiniteError carrying a stack trace.
func NewNonFiniteError(op, stage string, index int) error {
	return errors.WithStack(&NonFiniteError{Op: op, Stage: stage, Index: index})
}

// NewUnsupportedConfigError returns a *UnsupportedConfigError carrying a stack trace.
func NewUnsupportedConfigError(op, format string, args ...interface{}) error {
	return errors.WithStack(&UnsupportedConfigError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// IsShape reports whether err wraps a *ShapeError.
func IsShape(err error) bool {
	var target *ShapeError
	return errors.As(err, &target)
}

// IsNonFinite reports whether err wraps a *NonFiniteError.
func IsNonFinite(err error) bool {
	var target *NonFiniteError
	return errors.As(err, &target)
}

// IsUnsupported reports whether err wraps a *UnsupportedConfigError.
func IsUnsupported(err error) bool {
	var target *UnsupportedConfigError
	return errors.As(err, &target)
}

// Stage returns the checkpoint name of a wrapped *NonFiniteError, or "" when
// err does not carry one.
func Stage(err error) string {
	var target *NonFiniteError
	if errors.As(err, &target) {
		return target.Stage
	}
	return ""
}
