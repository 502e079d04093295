package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Imputation strategies.
const (
	StrategyMedian = "median"
	StrategyMean   = "mean"
)

// SimpleImputer は欠損値（NaN）を列ごとの統計量で補完する
//
// A column with no observed value at all is filled with 0 so that the
// column count, and therefore feature alignment, never changes.
type SimpleImputer struct {
	state *model.StateManager

	// Strategy is StrategyMedian or StrategyMean.
	Strategy string

	statistics []float64
}

// NewSimpleImputer は新しいSimpleImputerを作成する
//
//	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)
//	XFilled, err := imputer.FitTransform(X)
func NewSimpleImputer(strategy string) *SimpleImputer {
	return &SimpleImputer{
		state:    model.NewStateManager(),
		Strategy: strategy,
	}
}

// Fit は各列の補完値を計算する
func (s *SimpleImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}
	if s.Strategy != StrategyMedian && s.Strategy != StrategyMean {
		return errors.NewValidationError("strategy", "must be median or mean", s.Strategy)
	}

	s.statistics = make([]float64, c)
	observed := make([]float64, 0, r)
	for j := 0; j < c; j++ {
		observed = observed[:0]
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			s.statistics[j] = 0
			continue
		}
		if s.Strategy == StrategyMean {
			s.statistics[j] = stat.Mean(observed, nil)
		} else {
			s.statistics[j] = Median(observed)
		}
	}

	s.state.SetFitted(c, r)
	return nil
}

// Transform はNaNを学習済みの統計量で置き換えたコピーを返す
func (s *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	_, c := X.Dims()
	if err := s.state.RequireFitted("SimpleImputer", "Transform", c); err != nil {
		return nil, err
	}

	result := mat.DenseCopyOf(X)
	r, _ := result.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(result.At(i, j)) {
				result.Set(i, j, s.statistics[j])
			}
		}
	}
	return result, nil
}

// FitTransform は学習と変換を同時に実行する
func (s *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Statistics returns the per-column fill values learned by Fit.
func (s *SimpleImputer) Statistics() []float64 {
	out := make([]float64, len(s.statistics))
	copy(out, s.statistics)
	return out
}

// Clone implements model.Transformer.
func (s *SimpleImputer) Clone() model.Transformer {
	return NewSimpleImputer(s.Strategy)
}

// Median returns the median of values, averaging the two middle elements for
// an even count. values is not modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ColumnStdDev returns the sample standard deviation (n-1 denominator) of each
// column of X. Constant columns, and matrices with fewer than two rows, have
// a deviation of exactly 0.
func ColumnStdDev(X mat.Matrix) []float64 {
	r, c := X.Dims()
	out := make([]float64, c)
	if r < 2 {
		return out
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if isConstant(col) {
			continue
		}
		out[j] = stat.StdDev(col, nil)
	}
	return out
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
