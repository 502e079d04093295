package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a panic recovered inside a fold or tree worker, so one
// bad task fails the run with an error instead of crashing the process.
type PanicError struct {
	Operation  string
	PanicValue interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the goroutine stack captured at recovery.
func (e *PanicError) String() string {
	return e.Error() + "\n" + e.StackTrace
}

func NewPanicError(operation string, value interface{}) *PanicError {
	return &PanicError{Operation: operation, PanicValue: value, StackTrace: string(debug.Stack())}
}

// Recover must be deferred directly. It stores a recovered panic in *err,
// wrapping any error already there.
//
//	defer errors.Recover(&err, "outer fold 3")
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err != nil {
		*err = Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = NewPanicError(operation, r)
}

// SafeExecute runs fn, turning a panic into a *PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
