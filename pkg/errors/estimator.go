package errors

import (
	"fmt"

	"github.com/rs/zerolog"
)

// NotFittedError is returned by Predict, Transform and the importance
// accessors of an estimator that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("outcomecv: %s.%s called before Fit", e.ModelName, e.Method)
}

func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "NotFittedError").
		Str("model", e.ModelName).
		Str("method", e.Method)
}

func NewNotFittedError(modelName, method string) error {
	return WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError reports a matrix whose rows (Axis 0) or columns (Axis 1)
// do not match what the estimator was fitted on.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("outcomecv: %s: got %d %s, want %d", e.Op, e.Got, e.axisName(), e.Expected)
}

func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "DimensionError").
		Str("op", e.Op).
		Str("axis", e.axisName()).
		Int("expected", e.Expected).
		Int("got", e.Got)
}

func NewDimensionError(op string, expected, got, axis int) error {
	return WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError is an argument that is well-typed but unusable, e.g. fewer
// samples than a metric needs.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("outcomecv: %s: %s", e.Op, e.Message)
}

func NewValueError(op, message string) error {
	return WithStack(&ValueError{Op: op, Message: message})
}

// ModelError wraps a failure inside an estimator's Fit or Predict.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("outcomecv: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("outcomecv: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func NewModelError(op, kind string, err error) error {
	return WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}
