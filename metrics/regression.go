// Package metrics implements regression scores on aligned prediction slices.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// checkPair は入力の長さを検証する
func checkPair(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する
//
// With no variance in yTrue the score is 1 for exact predictions and 0
// otherwise, and an UndefinedMetricWarning is raised.
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	yMean := stat.Mean(yTrue, nil)
	var tss, rss float64
	for i := range yTrue {
		tss += (yTrue[i] - yMean) * (yTrue[i] - yMean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}
	return finiteRatioScore("r2", rss, tss), nil
}

// ExplainedVarianceScore は説明分散スコアを計算する
//
//	1 - Var(yTrue - yPred) / Var(yTrue)
//
// Degenerate targets follow R2Score.
func ExplainedVarianceScore(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("ExplainedVarianceScore", yTrue, yPred); err != nil {
		return 0, err
	}

	diff := make([]float64, len(yTrue))
	for i := range yTrue {
		diff[i] = yTrue[i] - yPred[i]
	}
	return finiteRatioScore("explained_variance",
		stat.PopVariance(diff, nil), stat.PopVariance(yTrue, nil)), nil
}

// finiteRatioScore returns 1 - num/den, replacing the undefined den == 0 case
// with 1 (num == 0) or 0.
func finiteRatioScore(metric string, num, den float64) float64 {
	if den != 0 {
		return 1 - num/den
	}
	result := 0.0
	if num == 0 {
		result = 1
	}
	errors.Warn(errors.NewUndefinedMetricWarning(metric, "no variance in y_true", result))
	return result
}
