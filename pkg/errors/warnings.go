package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/rs/zerolog"
)

var (
	warnMu      sync.Mutex
	warnHandler = func(w error) {
		log.Printf("outcomecv: warning: %v", w)
	}
	// set by pkg/log, which imports this package
	zerologWarn func(error)
)

// SetWarningHandler replaces the fallback used when no zerolog function is set.
//
//	errors.SetWarningHandler(func(error) {}) // silence warnings in a benchmark
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	warnHandler = handler
}

// SetZerologWarnFunc routes warnings to a zerolog logger. nil restores the
// fallback handler.
func SetZerologWarnFunc(fn func(warning error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	zerologWarn = fn
}

// Warn reports a non-fatal condition. It is safe to call from fold workers.
func Warn(w error) {
	warnMu.Lock()
	defer warnMu.Unlock()

	switch {
	case zerologWarn != nil:
		zerologWarn(w)
	case warnHandler != nil:
		warnHandler(w)
	}
}

// ConvergenceWarning is raised when an iterative solver hits max_iter. The
// model keeps the coefficients it reached.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	msg := w.Message
	if msg == "" {
		msg = "increase max_iter or loosen tol"
	}
	return fmt.Sprintf("%s did not converge in %d iterations: %s", w.Algorithm, w.Iterations, msg)
}

func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "ConvergenceWarning").
		Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations)
}

func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// UndefinedMetricWarning is raised when a metric has no finite value, such as
// variance explained on a constant outcome, and Result is used instead.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("%s is undefined with %s; using %g", w.Metric, w.Condition, w.Result)
}

func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "UndefinedMetricWarning").
		Str("metric", w.Metric).
		Float64("result", w.Result)
}

func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}
