// Package ensemble provides bagged tree ensembles.
package ensemble

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/core/parallel"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/sklearn/tree"
)

// RandomForestRegressor averages bootstrapped CART regressors.
//
// Tree i draws its bootstrap sample and its feature subsets from a generator
// seeded with (random_state, i), so a fitted forest does not depend on n_jobs.
type RandomForestRegressor struct {
	state *model.StateManager

	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     float64
	bootstrap       bool
	randomState     int64
	nJobs           int

	estimators []*tree.DecisionTreeRegressor
}

// NewRandomForestRegressor creates a forest with scikit-learn defaults.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		state:           model.NewStateManager(),
		nEstimators:     100,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     1.0,
		bootstrap:       true,
		nJobs:           1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit grows the forest.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext grows the forest, stopping early if ctx is cancelled.
func (rf *RandomForestRegressor) FitContext(ctx context.Context, X, y mat.Matrix) error {
	if rf.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be positive", rf.nEstimators)
	}
	rows, cols := X.Dims()
	yRows, _ := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("RandomForestRegressor.Fit", rows, yRows, 0)
	}

	estimators := make([]*tree.DecisionTreeRegressor, rf.nEstimators)
	err := parallel.ForEach(ctx, rf.nEstimators, parallel.ResolveWorkers(rf.nJobs), func(i int) error {
		rng := rand.New(rand.NewPCG(uint64(rf.randomState), uint64(i)))

		dt := tree.NewDecisionTreeRegressor(
			tree.WithMaxDepth(rf.maxDepth),
			tree.WithMinSamplesSplit(rf.minSamplesSplit),
			tree.WithMinSamplesLeaf(rf.minSamplesLeaf),
			tree.WithMaxFeatures(rf.maxFeatures),
			tree.WithRandomState(rng.Int64()),
		)

		Xb, yb := X, y
		if rf.bootstrap {
			Xb, yb = bootstrapSample(X, y, rng)
		}
		if err := dt.Fit(Xb, yb); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
		estimators[i] = dt
		return nil
	})
	if err != nil {
		return err
	}

	rf.estimators = estimators
	rf.state.SetFitted(cols, rows)
	return nil
}

func bootstrapSample(X, y mat.Matrix, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	rows, cols := X.Dims()
	Xb := mat.NewDense(rows, cols, nil)
	yb := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		src := rng.IntN(rows)
		for j := 0; j < cols; j++ {
			Xb.Set(i, j, X.At(src, j))
		}
		yb.Set(i, 0, y.At(src, 0))
	}
	return Xb, yb
}

// Predict averages the tree predictions.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if err := rf.state.RequireFitted("RandomForestRegressor", "Predict", cols); err != nil {
		return nil, err
	}

	// Trees predict into their own slots; summing in tree order keeps the
	// result independent of n_jobs.
	preds := make([]mat.Matrix, len(rf.estimators))
	errs := make([]error, len(rf.estimators))
	parallel.Parallelize(len(rf.estimators), parallel.ResolveWorkers(rf.nJobs), func(start, end int) {
		for t := start; t < end; t++ {
			preds[t], errs[t] = rf.estimators[t].Predict(X)
		}
	})

	out := mat.NewDense(rows, 1, nil)
	for t, pred := range preds {
		if errs[t] != nil {
			return nil, errs[t]
		}
		for i := 0; i < rows; i++ {
			out.Set(i, 0, out.At(i, 0)+pred.At(i, 0))
		}
	}
	n := float64(len(rf.estimators))
	for i := 0; i < rows; i++ {
		out.Set(i, 0, out.At(i, 0)/n)
	}
	return out, nil
}

// FeatureImportances averages the normalised impurity importances of the
// trees that split at least once and renormalises to sum 1. A forest made
// only of single-leaf trees reports all zeros.
func (rf *RandomForestRegressor) FeatureImportances() ([]float64, error) {
	if !rf.state.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "FeatureImportances")
	}
	nFeatures, _ := rf.state.GetDimensions()
	mean := make([]float64, nFeatures)

	var used int
	for _, dt := range rf.estimators {
		if len(dt.Nodes()) < 2 {
			continue
		}
		imp, err := dt.FeatureImportances()
		if err != nil {
			return nil, err
		}
		for j, v := range imp {
			mean[j] += v
		}
		used++
	}
	if used == 0 {
		return mean, nil
	}

	var total float64
	for j := range mean {
		mean[j] /= float64(used)
		total += mean[j]
	}
	if total > 0 {
		for j := range mean {
			mean[j] /= total
		}
	}
	return mean, nil
}

// Estimators returns the fitted trees.
func (rf *RandomForestRegressor) Estimators() []*tree.DecisionTreeRegressor {
	return rf.estimators
}

// GetParams returns the hyperparameters.
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"max_depth":         rf.maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"min_samples_leaf":  rf.minSamplesLeaf,
		"max_features":      rf.maxFeatures,
		"bootstrap":         rf.bootstrap,
		"random_state":      rf.randomState,
		"n_jobs":            rf.nJobs,
	}
}

// SetParams sets hyperparameters by name.
func (rf *RandomForestRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "n_estimators":
			rf.nEstimators, err = model.ParamInt(key, value)
		case "max_depth":
			rf.maxDepth, err = model.ParamInt(key, value)
		case "min_samples_split":
			rf.minSamplesSplit, err = model.ParamInt(key, value)
		case "min_samples_leaf":
			rf.minSamplesLeaf, err = model.ParamInt(key, value)
		case "max_features":
			rf.maxFeatures, err = model.ParamFloat(key, value)
		case "bootstrap":
			b, ok := value.(bool)
			if !ok {
				err = errors.NewValidationError(key, "expected a bool", value)
			}
			rf.bootstrap = b
		case "random_state":
			var seed int
			seed, err = model.ParamInt(key, value)
			rf.randomState = int64(seed)
		case "n_jobs":
			rf.nJobs, err = model.ParamInt(key, value)
		default:
			err = errors.NewValidationError(key, "unknown RandomForestRegressor parameter", value)
		}
		if err != nil {
			return err
		}
	}
	rf.state.Reset()
	return nil
}

// Clone implements model.Regressor.
func (rf *RandomForestRegressor) Clone() model.Regressor {
	return NewRandomForestRegressor(
		WithNEstimators(rf.nEstimators),
		WithMaxDepth(rf.maxDepth),
		WithMinSamplesSplit(rf.minSamplesSplit),
		WithMinSamplesLeaf(rf.minSamplesLeaf),
		WithMaxFeatures(rf.maxFeatures),
		WithBootstrap(rf.bootstrap),
		WithRandomState(rf.randomState),
		WithNJobs(rf.nJobs),
	)
}
