package errors

import (
	"fmt"

	"github.com/rs/zerolog"
)

// InputFormatError reports a feature, class or outcome table that cannot be
// read. Line is 1-based; zero means the whole file.
type InputFormatError struct {
	Path   string
	Line   int
	Reason string
}

func (e *InputFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("outcomecv: %s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("outcomecv: %s: %s", e.Path, e.Reason)
}

func (e *InputFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "InputFormatError").
		Str("path", e.Path).
		Int("line", e.Line).
		Str("reason", e.Reason)
}

func NewInputFormatError(path string, line int, reason string) error {
	return WithStack(&InputFormatError{Path: path, Line: line, Reason: reason})
}

// UnsupportedModelError names a model family, or a fitted model type, that has
// no importance extraction.
type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("outcomecv: unsupported model %q (want rf or en)", e.Model)
}

func (e *UnsupportedModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "UnsupportedModelError").Str("model", e.Model)
}

func NewUnsupportedModelError(model string) error {
	return WithStack(&UnsupportedModelError{Model: model})
}

// ValidationError rejects a parameter value before any work starts.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("outcomecv: invalid %s %v: %s", e.ParamName, e.Value, e.Reason)
}

func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "ValidationError").
		Str("param", e.ParamName).
		Interface("value", e.Value).
		Str("reason", e.Reason)
}

func NewValidationError(param, reason string, value interface{}) error {
	return WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}
