package model_selection

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/core/parallel"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
)

// DefaultMaxInnerSplits caps the inner KFold: n_splits = min(5, n_train).
const DefaultMaxInnerSplits = 5

// CandidateResult is the cross-validated score of one grid point.
type CandidateResult struct {
	Params     map[string]interface{}
	MeanScore  float64
	FoldScores []float64
}

// GridSearchCV selects hyperparameters by exhaustive search scored with
// negative mean squared error, then refits the winner on all rows it was
// given. It is itself a model.Regressor so it can be nested inside an
// outer cross-validation loop.
type GridSearchCV struct {
	estimator      model.Regressor
	grid           ParamGrid
	cv             Splitter
	maxInnerSplits int
	nJobs          int
	logger         log.Logger

	bestParams    map[string]interface{}
	bestScore     float64
	bestEstimator model.Regressor
	results       []CandidateResult
}

// SearchOption configures a GridSearchCV.
type SearchOption func(*GridSearchCV)

// WithCV fixes the inner splitter. Without it each fit uses
// KFold(min(maxInnerSplits, n)) without shuffling.
func WithCV(cv Splitter) SearchOption {
	return func(gs *GridSearchCV) {
		gs.cv = cv
	}
}

// WithMaxInnerSplits overrides DefaultMaxInnerSplits.
func WithMaxInnerSplits(n int) SearchOption {
	return func(gs *GridSearchCV) {
		gs.maxInnerSplits = n
	}
}

// WithNJobs sets how many grid points are scored concurrently.
func WithNJobs(n int) SearchOption {
	return func(gs *GridSearchCV) {
		gs.nJobs = n
	}
}

// WithLogger sets the logger used for per-candidate debug lines.
func WithLogger(l log.Logger) SearchOption {
	return func(gs *GridSearchCV) {
		gs.logger = l
	}
}

// NewGridSearchCV creates a search over grid for estimator.
func NewGridSearchCV(estimator model.Regressor, grid ParamGrid, opts ...SearchOption) *GridSearchCV {
	gs := &GridSearchCV{
		estimator:      estimator,
		grid:           grid,
		maxInnerSplits: DefaultMaxInnerSplits,
		nJobs:          1,
	}
	for _, opt := range opts {
		opt(gs)
	}
	return gs
}

// Fit implements model.Fitter.
func (gs *GridSearchCV) Fit(X, y mat.Matrix) error {
	return gs.FitContext(context.Background(), X, y)
}

// FitContext scores every candidate on the inner folds and refits the best.
func (gs *GridSearchCV) FitContext(ctx context.Context, X, y mat.Matrix) error {
	if err := gs.grid.Validate(); err != nil {
		return err
	}
	n, _ := X.Dims()

	cv := gs.cv
	if cv == nil {
		k := gs.maxInnerSplits
		if n < k {
			k = n
		}
		cv = NewKFold(k, false, 0)
	}
	folds, err := cv.Split(n)
	if err != nil {
		return errors.Wrap(err, "GridSearchCV: inner split")
	}

	logger := gs.logger
	if logger == nil {
		logger = log.GetLogger()
	}

	candidates := gs.grid.Candidates()
	results := make([]CandidateResult, len(candidates))
	err = parallel.ForEach(ctx, len(candidates), parallel.ResolveWorkers(gs.nJobs), func(i int) error {
		scores := make([]float64, len(folds))
		for f, fold := range folds {
			est := gs.estimator.Clone()
			if err := est.SetParams(candidates[i]); err != nil {
				return err
			}
			mse, err := fitAndScore(ctx, est, X, y, fold)
			if err != nil {
				return errors.Wrapf(err, "candidate %s fold %d", model.FormatParams(candidates[i]), f)
			}
			scores[f] = -mse
		}

		var sum float64
		for _, s := range scores {
			sum += s
		}
		results[i] = CandidateResult{
			Params:     candidates[i],
			MeanScore:  sum / float64(len(scores)),
			FoldScores: scores,
		}
		logger.Debug("Scored candidate",
			log.BestParamsKey, model.FormatParams(candidates[i]),
			log.BestScoreKey, results[i].MeanScore,
			log.NFoldsKey, len(folds),
		)
		return nil
	})
	if err != nil {
		return err
	}

	best := 0
	for i := 1; i < len(results); i++ {
		// strict comparison: the first candidate wins ties
		if results[i].MeanScore > results[best].MeanScore ||
			(math.IsNaN(results[best].MeanScore) && !math.IsNaN(results[i].MeanScore)) {
			best = i
		}
	}

	refit := gs.estimator.Clone()
	if err := refit.SetParams(results[best].Params); err != nil {
		return err
	}
	if err := model.FitContext(ctx, refit, X, y); err != nil {
		return errors.Wrap(err, "GridSearchCV: refit")
	}

	gs.results = results
	gs.bestParams = results[best].Params
	gs.bestScore = results[best].MeanScore
	gs.bestEstimator = refit
	return nil
}

func fitAndScore(ctx context.Context, est model.Regressor, X, y mat.Matrix, fold CVFold) (float64, error) {
	if err := model.FitContext(ctx, est, SelectRows(X, fold.TrainIndices), SelectRows(y, fold.TrainIndices)); err != nil {
		return 0, err
	}
	pred, err := est.Predict(SelectRows(X, fold.TestIndices))
	if err != nil {
		return 0, err
	}
	var sum float64
	for k, idx := range fold.TestIndices {
		d := y.At(idx, 0) - pred.At(k, 0)
		sum += d * d
	}
	return sum / float64(len(fold.TestIndices)), nil
}

// Predict uses the refitted best estimator.
func (gs *GridSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if gs.bestEstimator == nil {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return gs.bestEstimator.Predict(X)
}

// BestParams returns the winning candidate.
func (gs *GridSearchCV) BestParams() map[string]interface{} {
	return gs.bestParams
}

// BestScore returns the winning mean negative MSE.
func (gs *GridSearchCV) BestScore() float64 {
	return gs.bestScore
}

// BestEstimator returns the refitted winner, or nil before Fit.
func (gs *GridSearchCV) BestEstimator() model.Regressor {
	return gs.bestEstimator
}

// Results returns every candidate's scores in enumeration order.
func (gs *GridSearchCV) Results() []CandidateResult {
	return gs.results
}

// Final implements model.Wrapper.
func (gs *GridSearchCV) Final() model.Regressor {
	return gs.bestEstimator
}

// GetParams returns the base estimator's parameters.
func (gs *GridSearchCV) GetParams() map[string]interface{} {
	return gs.estimator.GetParams()
}

// SetParams forwards to the base estimator and discards any fitted state.
func (gs *GridSearchCV) SetParams(params map[string]interface{}) error {
	gs.bestEstimator = nil
	gs.bestParams = nil
	gs.results = nil
	return gs.estimator.SetParams(params)
}

// NJobs reports how many grid points are scored concurrently.
func (gs *GridSearchCV) NJobs() int {
	return gs.nJobs
}

// Clone implements model.Regressor.
func (gs *GridSearchCV) Clone() model.Regressor {
	return &GridSearchCV{
		estimator:      gs.estimator.Clone(),
		grid:           gs.grid,
		cv:             gs.cv,
		maxInnerSplits: gs.maxInnerSplits,
		nJobs:          gs.nJobs,
		logger:         gs.logger,
	}
}

// SelectRows copies the given rows of m into a new dense matrix.
func SelectRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}
