// Package linear provides linear regression models.
package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// ElasticNet は L1/L2 正則化付き線形回帰（座標降下法）
//
// It minimises the scikit-learn objective
//
//	1/(2n) ||y - Xw - b||² + alpha*l1_ratio*||w||₁ + 0.5*alpha*(1-l1_ratio)*||w||²
//
// and stops once the duality gap falls below tol*||y - mean(y)||². When
// max_iter sweeps pass without reaching that bound a ConvergenceWarning is
// raised through errors.Warn and the last iterate is kept.
type ElasticNet struct {
	state *model.StateManager

	// Hyperparameters
	alpha        float64
	l1Ratio      float64
	maxIter      int
	tol          float64
	fitIntercept bool

	// Learned parameters
	coef_      []float64
	intercept_ float64
	nIter_     int
	dualGap_   float64
}

// NewElasticNet は新しいElasticNetモデルを作成
func NewElasticNet(opts ...Option) *ElasticNet {
	en := &ElasticNet{
		state:        model.NewStateManager(),
		alpha:        1.0,
		l1Ratio:      0.5,
		maxIter:      1000,
		tol:          1e-4,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(en)
	}
	return en
}

func (en *ElasticNet) validate() error {
	if en.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", en.alpha)
	}
	if en.l1Ratio < 0 || en.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", en.l1Ratio)
	}
	if en.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be positive", en.maxIter)
	}
	if en.tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", en.tol)
	}
	return nil
}

// Fit はモデルを訓練データで学習
func (en *ElasticNet) Fit(X, y mat.Matrix) error {
	if err := en.validate(); err != nil {
		return err
	}

	n, p := X.Dims()
	yRows, yCols := y.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("ElasticNet.Fit", "empty data", errors.ErrEmptyData)
	}
	if n != yRows {
		return errors.NewDimensionError("ElasticNet.Fit", n, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("ElasticNet.Fit", 1, yCols, 1)
	}

	// Column-major copy, centred when fitting an intercept.
	cols := make([][]float64, p)
	xMean := make([]float64, p)
	for j := 0; j < p; j++ {
		cols[j] = mat.Col(nil, j, X)
		if err := errors.CheckNumericalStability("ElasticNet.Fit", cols[j], 0); err != nil {
			return errors.Wrapf(err, "feature %d contains NaN or Inf; impute before fitting", j)
		}
		if en.fitIntercept {
			xMean[j] = floats.Sum(cols[j]) / float64(n)
			floats.AddConst(-xMean[j], cols[j])
		}
	}
	yc := mat.Col(nil, 0, y)
	var yMean float64
	if en.fitIntercept {
		yMean = floats.Sum(yc) / float64(n)
		floats.AddConst(-yMean, yc)
	}

	w, nIter, gap, converged := en.coordinateDescent(cols, yc)

	en.coef_ = w
	en.nIter_ = nIter
	en.dualGap_ = gap
	en.intercept_ = 0
	if en.fitIntercept {
		en.intercept_ = yMean - floats.Dot(xMean, w)
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("ElasticNet", nIter,
			fmt.Sprintf("duality gap %.3g above tolerance %.3g (alpha=%g, l1_ratio=%g)",
				gap, en.tol*floats.Dot(yc, yc), en.alpha, en.l1Ratio)))
	}

	en.state.SetFitted(p, n)
	return nil
}

// coordinateDescent runs cyclic coordinate descent on centred data and
// returns the weights, the sweeps used, the final duality gap and whether
// the gap reached the tolerance.
func (en *ElasticNet) coordinateDescent(cols [][]float64, y []float64) ([]float64, int, float64, bool) {
	n := len(y)
	p := len(cols)
	nf := float64(n)

	l1Reg := en.alpha * en.l1Ratio * nf
	l2Reg := en.alpha * (1 - en.l1Ratio) * nf

	normSq := make([]float64, p)
	for j := range cols {
		normSq[j] = floats.Dot(cols[j], cols[j])
	}

	w := make([]float64, p)
	residual := make([]float64, n)
	copy(residual, y)

	tol := en.tol * floats.Dot(y, y)
	gap := tol + 1

	for iter := 0; iter < en.maxIter; iter++ {
		var wMax, dwMax float64
		for j := 0; j < p; j++ {
			if normSq[j] == 0 {
				continue
			}
			wj := w[j]
			if wj != 0 {
				floats.AddScaled(residual, wj, cols[j])
			}

			rho := floats.Dot(cols[j], residual)
			w[j] = softThreshold(rho, l1Reg) / (normSq[j] + l2Reg)

			if w[j] != 0 {
				floats.AddScaled(residual, -w[j], cols[j])
			}

			dwMax = math.Max(dwMax, math.Abs(w[j]-wj))
			wMax = math.Max(wMax, math.Abs(w[j]))
		}

		if wMax == 0 || dwMax/wMax < en.tol || iter == en.maxIter-1 {
			gap = dualityGap(cols, y, residual, w, l1Reg, l2Reg)
			if gap <= tol {
				return w, iter + 1, gap, true
			}
		}
	}
	return w, en.maxIter, gap, false
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

func dualityGap(cols [][]float64, y, residual, w []float64, l1Reg, l2Reg float64) float64 {
	var dualNorm float64
	for j := range cols {
		xta := floats.Dot(cols[j], residual) - l2Reg*w[j]
		dualNorm = math.Max(dualNorm, math.Abs(xta))
	}

	rNorm2 := floats.Dot(residual, residual)
	wNorm2 := floats.Dot(w, w)

	var gap, scale float64
	if dualNorm > l1Reg {
		scale = l1Reg / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*scale*scale)
	} else {
		scale = 1
		gap = rNorm2
	}

	l1Norm := floats.Norm(w, 1)
	gap += l1Reg*l1Norm - scale*floats.Dot(residual, y) + 0.5*l2Reg*(1+scale*scale)*wNorm2
	return gap
}

// Predict は入力データに対する予測を行う
func (en *ElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, c := X.Dims()
	if err := en.state.RequireFitted("ElasticNet", "Predict", c); err != nil {
		return nil, err
	}

	w := mat.NewVecDense(c, en.coef_)
	var pred mat.VecDense
	pred.MulVec(X, w)

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, pred.AtVec(i)+en.intercept_)
	}
	return out, nil
}

// Coef returns a copy of the learned coefficients, one per feature.
func (en *ElasticNet) Coef() []float64 {
	out := make([]float64, len(en.coef_))
	copy(out, en.coef_)
	return out
}

// Intercept returns the learned intercept.
func (en *ElasticNet) Intercept() float64 {
	return en.intercept_
}

// NIter returns the number of coordinate descent sweeps run by the last Fit.
func (en *ElasticNet) NIter() int {
	return en.nIter_
}

// DualGap returns the duality gap at the end of the last Fit.
func (en *ElasticNet) DualGap() float64 {
	return en.dualGap_
}

// GetParams はモデルのハイパーパラメータを取得
func (en *ElasticNet) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha":         en.alpha,
		"l1_ratio":      en.l1Ratio,
		"max_iter":      en.maxIter,
		"tol":           en.tol,
		"fit_intercept": en.fitIntercept,
	}
}

// SetParams はモデルのハイパーパラメータを設定
func (en *ElasticNet) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "alpha":
			en.alpha, err = model.ParamFloat(key, value)
		case "l1_ratio":
			en.l1Ratio, err = model.ParamFloat(key, value)
		case "max_iter":
			en.maxIter, err = model.ParamInt(key, value)
		case "tol":
			en.tol, err = model.ParamFloat(key, value)
		case "fit_intercept":
			b, ok := value.(bool)
			if !ok {
				err = errors.NewValidationError(key, "expected a bool", value)
			}
			en.fitIntercept = b
		default:
			err = errors.NewValidationError(key, "unknown ElasticNet parameter", value)
		}
		if err != nil {
			return err
		}
	}
	en.state.Reset()
	return nil
}

// Clone implements model.Regressor.
func (en *ElasticNet) Clone() model.Regressor {
	return NewElasticNet(
		WithAlpha(en.alpha),
		WithL1Ratio(en.l1Ratio),
		WithMaxIter(en.maxIter),
		WithTol(en.tol),
		WithFitIntercept(en.fitIntercept),
	)
}
