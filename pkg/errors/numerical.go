package errors

import (
	"fmt"
	"math"
	"strings"
)

// NumericalInstabilityError reports NaN or Inf reaching a solver.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	shown := e.Values
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = fmt.Sprintf("%.6g", v)
	}
	if len(e.Values) > len(shown) {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("outcomecv: %s: non-finite values at iteration %d: [%s]",
		e.Operation, e.Iteration, strings.Join(parts, ", "))
}

func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Iteration: iteration})
}

// CheckNumericalStability fails when values holds NaN or Inf.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// SafeScale returns value*scale, or 0 when scale is zero, NaN or Inf. A
// constant feature has no spread, so its scaled coefficient is zero.
func SafeScale(value, scale float64) float64 {
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 0
	}
	return value * scale
}
