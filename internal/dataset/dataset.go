// Package dataset loads the tab-separated feature, feature-class and outcome
// tables and aligns them by patient identifier.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Table is a numeric matrix with row identifiers and column names.
// Missing cells are NaN.
type Table struct {
	Path    string
	IDs     []string
	Columns []string
	Values  *mat.Dense
}

// ColumnIndex returns the position of name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for j, c := range t.Columns {
		if c == name {
			return j, true
		}
	}
	return -1, false
}

// Select copies the named columns, in the given order, into a new matrix.
func (t *Table) Select(columns []string) (*mat.Dense, error) {
	rows := len(t.IDs)
	if len(columns) == 0 {
		return nil, errors.ErrNoFeatures
	}
	idx := make([]int, len(columns))
	for k, name := range columns {
		j, ok := t.ColumnIndex(name)
		if !ok {
			return nil, errors.NewInputFormatError(t.Path, 0, "feature "+quote(name)+" is not a column of the feature table")
		}
		idx[k] = j
	}
	out := mat.NewDense(rows, len(columns), nil)
	for i := 0; i < rows; i++ {
		for k, j := range idx {
			out.Set(i, k, t.Values.At(i, j))
		}
	}
	return out, nil
}

// FeatureClass assigns one feature to one class.
type FeatureClass struct {
	Feature string `csv:"Feature"`
	Class   string `csv:"Class"`
}

// FeatureClasses is the class table in file order.
type FeatureClasses []FeatureClass

// ClassOf returns the class label of feature.
func (fc FeatureClasses) ClassOf(feature string) (string, bool) {
	for _, c := range fc {
		if c.Feature == feature {
			return c.Class, true
		}
	}
	return "", false
}

// Outcome is the target vector. Once aligned, IDs equal the feature table's IDs.
type Outcome struct {
	Name   string
	IDs    []string
	Values []float64
}

// Dataset bundles the three aligned inputs.
type Dataset struct {
	Features *Table
	Classes  FeatureClasses
	Outcome  Outcome
}

// Patients returns the patient identifiers in feature-table order.
func (d *Dataset) Patients() []string {
	return d.Features.IDs
}

func quote(s string) string {
	return "\"" + s + "\""
}
