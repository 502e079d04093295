package importance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/internal/dataset"
	"github.com/YuminosukeSato/outcomecv/linear"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/preprocessing"
	"github.com/YuminosukeSato/outcomecv/sklearn/ensemble"
	"github.com/YuminosukeSato/outcomecv/sklearn/pipeline"
)

var classes = dataset.FeatureClasses{
	{Feature: "a", Class: "Clinical"},
	{Feature: "b", Class: "Tumor"},
	{Feature: "c", Class: "Blood"},
	{Feature: "d", Class: "Clinical"},
}

func TestRank_StableByAbsoluteScore(t *testing.T) {
	records, err := Rank([]string{"a", "b", "c", "d"}, []float64{0.2, -0.5, 0.5, 0.1}, classes)
	require.NoError(t, err)

	var got []float64
	for _, r := range records {
		got = append(got, r.Score)
	}
	assert.Equal(t, []float64{-0.5, 0.5, 0.2, 0.1}, got)
	assert.Equal(t, "b", records[0].Feature)
	assert.Equal(t, "Tumor", records[0].Class)
	assert.Equal(t, 1, records[0].Rank)
	assert.Equal(t, 4, records[3].Rank)
}

func TestRank_Errors(t *testing.T) {
	_, err := Rank([]string{"a"}, []float64{1, 2}, classes)
	assert.Error(t, err)

	_, err = Rank([]string{"zzz"}, []float64{1}, classes)
	assert.Error(t, err)
}

func TestScores_ElasticNetScaledByStdDev(t *testing.T) {
	nan := math.NaN()
	// column 1 is constant once imputed
	X := mat.NewDense(5, 2, []float64{
		1, 4,
		2, 4,
		3, nan,
		4, 4,
		5, 4,
	})
	y := mat.NewDense(5, 1, []float64{2, 4, 6, 8, 10})

	p, err := pipeline.New(linear.NewElasticNet(linear.WithAlpha(1e-6), linear.WithMaxIter(100000), linear.WithTol(1e-10)),
		pipeline.Step{Name: "imputer", Transformer: preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)})
	require.NoError(t, err)
	require.NoError(t, p.Fit(X, y))

	scores, err := Scores(p, X)
	require.NoError(t, err)

	coef := model.Final(p).(model.CoefficientProvider).Coef()
	assert.InDelta(t, coef[0]*math.Sqrt(2.5), scores[0], 1e-12)
	assert.Equal(t, 0.0, scores[1])
	assert.False(t, math.IsNaN(scores[1]))
}

func TestScores_ForestImportances(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{1, 0, 2, 1, 3, 0, 4, 1, 5, 0, 6, 1})
	y := mat.NewDense(6, 1, []float64{1, 1, 1, 5, 5, 5})

	rf := ensemble.NewRandomForestRegressor(ensemble.WithNEstimators(10), ensemble.WithRandomState(1))
	require.NoError(t, rf.Fit(X, y))

	scores, err := Scores(rf, X)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[0]+scores[1], 1e-9)
	assert.Equal(t, "RandomForest feature importances", Title(rf))
}

type opaqueModel struct{ model.Regressor }

func TestScores_UnsupportedModel(t *testing.T) {
	_, err := Scores(opaqueModel{}, mat.NewDense(1, 1, nil))

	var ume *errors.UnsupportedModelError
	require.True(t, errors.As(err, &ume), "got %v", err)
	assert.Equal(t, "opaqueModel", ume.Model)
}
