package model_selection

import (
	"sort"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// ParamGrid maps a parameter name to the values to try.
type ParamGrid map[string][]interface{}

// Validate rejects empty grids and empty value lists.
func (g ParamGrid) Validate() error {
	if len(g) == 0 {
		return errors.NewValidationError("param_grid", "must name at least one parameter", nil)
	}
	for name, values := range g {
		if len(values) == 0 {
			return errors.NewValidationError(name, "grid value list is empty", nil)
		}
	}
	return nil
}

// Keys returns the parameter names in sorted order.
func (g ParamGrid) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size is the number of candidates.
func (g ParamGrid) Size() int {
	if len(g) == 0 {
		return 0
	}
	n := 1
	for _, values := range g {
		n *= len(values)
	}
	return n
}

// Candidates expands the cartesian product. Keys are taken in sorted order
// and the last key varies fastest, so the enumeration is stable run to run.
func (g ParamGrid) Candidates() []map[string]interface{} {
	if g.Size() == 0 {
		return nil
	}
	keys := g.Keys()
	out := make([]map[string]interface{}, 0, g.Size())
	counters := make([]int, len(keys))
	for {
		c := make(map[string]interface{}, len(keys))
		for i, k := range keys {
			c[k] = g[k][counters[i]]
		}
		out = append(out, c)

		pos := len(keys) - 1
		for pos >= 0 {
			counters[pos]++
			if counters[pos] < len(g[keys[pos]]) {
				break
			}
			counters[pos] = 0
			pos--
		}
		if pos < 0 {
			return out
		}
	}
}

// WithPrefix returns a copy of the grid whose keys are prefixed, e.g. to
// address the final step of a pipeline ("estimator__").
func (g ParamGrid) WithPrefix(prefix string) ParamGrid {
	out := make(ParamGrid, len(g))
	for k, v := range g {
		out[prefix+k] = v
	}
	return out
}
