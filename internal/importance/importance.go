// Package importance turns a fitted model into a ranked feature table.
package importance

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/internal/dataset"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/preprocessing"
)

// Record is one row of the ranked importance table.
type Record struct {
	Feature string  `csv:"Feature"`
	Score   float64 `csv:"Score"`
	Class   string  `csv:"Class"`
	Rank    int     `csv:"-"`
}

// Scores returns one score per column of X for a fitted model.
//
// Models exposing impurity importances are used as-is. Linear models are
// scored as coef_j * sd_j, where sd_j is the sample standard deviation of
// column j after median imputation of X, so coefficients become comparable
// across feature units. A constant column scores 0.
func Scores(fitted model.Regressor, X mat.Matrix) ([]float64, error) {
	_, p := X.Dims()
	final := model.Final(fitted)

	var scores []float64
	switch m := final.(type) {
	case model.ImportanceProvider:
		imp, err := m.FeatureImportances()
		if err != nil {
			return nil, err
		}
		scores = imp
	case model.CoefficientProvider:
		Xfilled, err := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian).FitTransform(X)
		if err != nil {
			return nil, err
		}
		sd := preprocessing.ColumnStdDev(Xfilled)
		coef := m.Coef()
		if len(coef) != p {
			return nil, errors.NewDimensionError("importance.Scores", p, len(coef), 1)
		}
		scores = make([]float64, p)
		for j := range coef {
			scores[j] = errors.SafeScale(coef[j], sd[j])
		}
	default:
		return nil, errors.NewUnsupportedModelError(model.Name(final))
	}

	if len(scores) != p {
		return nil, errors.NewDimensionError("importance.Scores", p, len(scores), 1)
	}
	return scores, nil
}

// Rank pairs scores with feature names and class labels and sorts by
// absolute score, largest first. Equal magnitudes keep column order.
func Rank(features []string, scores []float64, classes dataset.FeatureClasses) ([]Record, error) {
	if len(features) != len(scores) {
		return nil, errors.NewDimensionError("importance.Rank", len(features), len(scores), 0)
	}
	records := make([]Record, len(features))
	for i, f := range features {
		class, ok := classes.ClassOf(f)
		if !ok {
			return nil, errors.NewValueError("importance.Rank", "feature "+f+" has no class")
		}
		records[i] = Record{Feature: f, Score: scores[i], Class: class}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return math.Abs(records[i].Score) > math.Abs(records[j].Score)
	})
	for i := range records {
		records[i].Rank = i + 1
	}
	return records, nil
}

// Title is the heading logged above the importance table.
func Title(fitted model.Regressor) string {
	switch model.Final(fitted).(type) {
	case model.ImportanceProvider:
		return "RandomForest feature importances"
	case model.CoefficientProvider:
		return "ElasticNet coefficients"
	default:
		return "Feature scores"
	}
}
