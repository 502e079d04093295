package model_selection

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/core/parallel"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
)

// CrossValPredict returns one out-of-fold prediction per sample, ordered by
// sample index. Each fold fits a private clone of est on its train rows only,
// so a test row never reaches Fit. Folds run on up to nJobs workers; the
// first failing fold (by index) aborts the whole evaluation.
func CrossValPredict(ctx context.Context, est model.Regressor, X, y mat.Matrix, cv Splitter, nJobs int) ([]float64, error) {
	n, _ := X.Dims()
	yRows, _ := y.Dims()
	if n != yRows {
		return nil, errors.NewDimensionError("CrossValPredict", n, yRows, 0)
	}

	folds, err := cv.Split(n)
	if err != nil {
		return nil, err
	}
	seen := make([]bool, n)
	for _, fold := range folds {
		for _, idx := range fold.TestIndices {
			if seen[idx] {
				return nil, errors.NewValueError("CrossValPredict",
					"cross_val_predict requires every sample to be tested exactly once")
			}
			seen[idx] = true
		}
	}
	for _, s := range seen {
		if !s {
			return nil, errors.NewValueError("CrossValPredict",
				"cross_val_predict requires every sample to be tested exactly once")
		}
	}

	logger := log.GetLogger()
	preds := make([]float64, n)
	err = parallel.ForEach(ctx, len(folds), parallel.ResolveWorkers(nJobs), func(i int) error {
		fold := folds[i]
		fitted := est.Clone()

		Xtrain := SelectRows(X, fold.TrainIndices)
		ytrain := SelectRows(y, fold.TrainIndices)
		err := model.FitContext(ctx, fitted, Xtrain, ytrain)
		if err != nil {
			return errors.Wrapf(err, "outer fold %d", i)
		}

		pred, err := fitted.Predict(SelectRows(X, fold.TestIndices))
		if err != nil {
			return errors.Wrapf(err, "outer fold %d", i)
		}
		for k, idx := range fold.TestIndices {
			preds[idx] = pred.At(k, 0)
		}

		logger.Debug("Finished outer fold",
			log.FoldKey, i,
			log.NFoldsKey, len(folds),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}
