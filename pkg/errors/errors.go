// Package errors defines the error kinds used across outcomecv, plus thin
// wrappers over cockroachdb/errors so callers import a single package.
//
// A run fails with one of:
//   - InputFormatError: a table file is missing or malformed, raised before any fit
//   - UnsupportedModelError: a model family or fitted model nothing can dispatch
//   - ValidationError: a flag, grid or selection that cannot be trained on
//
// Conditions that let the run continue are warnings and go through Warn.
package errors

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrEmptyData is wrapped when an estimator is fitted on zero rows.
	ErrEmptyData = New("empty data")

	// ErrNoFeatures is returned when feature selection leaves nothing to train on.
	ErrNoFeatures = New("no training features selected")
)

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with the caller's stack.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// StackTrace returns the first safe detail cockroachdb/errors recorded for
// err. For errors built by this package that is the formatted stack.
func StackTrace(err error) string {
	if err == nil {
		return ""
	}
	if details := errors.GetSafeDetails(err).SafeDetails; len(details) > 0 {
		return details[0]
	}
	return ""
}
