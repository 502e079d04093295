package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// ParamFloat converts a hyperparameter value (as produced by Go code, JSON or
// YAML decoding) to float64.
func ParamFloat(name string, v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, errors.NewValidationError(name, "expected a number", v)
	}
}

// ParamInt converts a hyperparameter value to int. Floats must be integral.
func ParamInt(name string, v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, errors.NewValidationError(name, "expected an integer", v)
		}
		return int(x), nil
	default:
		return 0, errors.NewValidationError(name, "expected an integer", v)
	}
}

// FormatParams renders params with sorted keys, for logs and map keys.
func FormatParams(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
