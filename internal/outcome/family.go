package outcome

import (
	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/internal/config"
	"github.com/YuminosukeSato/outcomecv/linear"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/preprocessing"
	"github.com/YuminosukeSato/outcomecv/sklearn/ensemble"
	"github.com/YuminosukeSato/outcomecv/sklearn/model_selection"
	"github.com/YuminosukeSato/outcomecv/sklearn/pipeline"
)

// Family is a supported model family, selected with --model.
type Family string

// Model families.
const (
	RandomForest Family = "rf"
	ElasticNet   Family = "en"
)

// Families lists every supported family.
var Families = []Family{RandomForest, ElasticNet}

// FamilyNames returns the --model values in Families order.
func FamilyNames() []string {
	names := make([]string, len(Families))
	for i, f := range Families {
		names[i] = string(f)
	}
	return names
}

// ParseFamily maps a --model value to a Family.
func ParseFamily(name string) (Family, error) {
	for _, f := range Families {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.NewUnsupportedModelError(name)
}

// NewPipeline builds median imputation followed by the family's regressor.
// Forest trees are grown sequentially; the runner parallelises one level up.
func (f Family) NewPipeline(cfg config.Config) (*pipeline.Pipeline, error) {
	var est model.Regressor
	switch f {
	case RandomForest:
		est = ensemble.NewRandomForestRegressor(
			ensemble.WithNEstimators(100),
			ensemble.WithRandomState(cfg.RandomSeed),
			ensemble.WithNJobs(1),
		)
	case ElasticNet:
		est = linear.NewElasticNet(
			linear.WithMaxIter(cfg.MaxIter),
			linear.WithTol(cfg.Tol),
		)
	default:
		return nil, errors.NewUnsupportedModelError(string(f))
	}
	return pipeline.New(est, pipeline.Step{
		Name:        "imputer",
		Transformer: preprocessing.NewSimpleImputer(preprocessing.StrategyMedian),
	})
}

// DefaultGrid returns the family's hyperparameter grid, keyed by the
// regressor's own parameter names.
func (f Family) DefaultGrid() model_selection.ParamGrid {
	switch f {
	case RandomForest:
		return model_selection.ParamGrid{
			"max_depth":        {0, 3, 6},
			"min_samples_leaf": {1, 3},
			"max_features":     {1.0, 0.33},
		}
	case ElasticNet:
		return model_selection.ParamGrid{
			"alpha":    {0.001, 0.01, 0.1, 1.0, 10.0},
			"l1_ratio": {0.1, 0.5, 0.9, 1.0},
		}
	default:
		return nil
	}
}
