package metrics

import (
	"math"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Pair holds a metric for the model's held-out predictions and for the
// mean baseline.
type Pair struct {
	HeldOut  float64 `json:"held-out"`
	Baseline float64 `json:"baseline"`
}

// Report compares held-out predictions against the baseline.
type Report struct {
	MSE               Pair    `json:"mse"`
	RMSE              Pair    `json:"rmse"`
	MAE               Pair    `json:"mae"`
	R2                float64 `json:"r2"`
	VarianceExplained float64 `json:"variance_explained"`
}

// LeaveOneOutMeans returns, for each i, the mean of every outcome except y[i].
// This is the prediction a constant model would make under the same
// leave-one-out protocol as the evaluated model.
func LeaveOneOutMeans(y []float64) ([]float64, error) {
	n := len(y)
	if n < 2 {
		return nil, errors.NewValueError("LeaveOneOutMeans", "need at least 2 samples")
	}
	var sum float64
	for _, v := range y {
		sum += v
	}
	out := make([]float64, n)
	for i, v := range y {
		out[i] = (sum - v) / float64(n-1)
	}
	if allEqual(y) {
		// avoid rounding noise from sum - v
		for i := range out {
			out[i] = y[0]
		}
	}
	return out, nil
}

func allEqual(y []float64) bool {
	for _, v := range y[1:] {
		if v != y[0] {
			return false
		}
	}
	return true
}

// CompareToBaseline scores yPred and the leave-one-out mean baseline on yTrue.
func CompareToBaseline(yTrue, yPred []float64) (Report, error) {
	if err := checkPair("CompareToBaseline", yTrue, yPred); err != nil {
		return Report{}, err
	}
	for i := range yPred {
		if math.IsNaN(yPred[i]) || math.IsInf(yPred[i], 0) {
			return Report{}, errors.NewValueError("CompareToBaseline", "predictions contain NaN or Inf")
		}
	}
	baseline, err := LeaveOneOutMeans(yTrue)
	if err != nil {
		return Report{}, err
	}

	var r Report
	pairs := []struct {
		dst *Pair
		fn  func(a, b []float64) (float64, error)
	}{
		{&r.MSE, MSE},
		{&r.RMSE, RMSE},
		{&r.MAE, MAE},
	}
	for _, p := range pairs {
		if p.dst.HeldOut, err = p.fn(yTrue, yPred); err != nil {
			return Report{}, err
		}
		if p.dst.Baseline, err = p.fn(yTrue, baseline); err != nil {
			return Report{}, err
		}
	}

	if r.R2, err = R2Score(yTrue, yPred); err != nil {
		return Report{}, err
	}
	if r.VarianceExplained, err = ExplainedVarianceScore(yTrue, yPred); err != nil {
		return Report{}, err
	}
	return r, nil
}
