// Package model defines the estimator contract shared by every model family.
package model

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict returns an n×1 matrix of predictions.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor is a supervised regression estimator with scikit-learn style
// parameter access. Clone returns an unfitted copy carrying the same
// parameters, so each cross-validation fold can own a private model.
type Regressor interface {
	Fitter
	Predictor

	// GetParams returns the hyperparameters by name.
	GetParams() map[string]interface{}

	// SetParams updates hyperparameters by name. Unknown names are an error.
	SetParams(params map[string]interface{}) error

	// Clone returns an unfitted copy with identical parameters.
	Clone() Regressor
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)

	// Clone returns an unfitted copy with identical settings.
	Clone() Transformer
}

// ImportanceProvider is implemented by fitted models whose feature scores are
// directly comparable across features (tree ensembles: impurity importance).
type ImportanceProvider interface {
	FeatureImportances() ([]float64, error)
}

// CoefficientProvider is implemented by fitted linear models. Raw coefficients
// are per unit of each feature and need rescaling before they can be ranked.
type CoefficientProvider interface {
	Coef() []float64
	Intercept() float64
}

// ContextFitter is implemented by estimators whose fit observes cancellation.
type ContextFitter interface {
	FitContext(ctx context.Context, X, y mat.Matrix) error
}

// FitContext fits r, passing ctx through when r can observe it. Estimators
// without FitContext only see ctx checked before they start.
func FitContext(ctx context.Context, r Fitter, X, y mat.Matrix) error {
	if cf, ok := r.(ContextFitter); ok {
		return cf.FitContext(ctx, X, y)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Fit(X, y)
}

// Wrapper is implemented by meta-estimators (pipelines, searches) that
// delegate to an inner regressor.
type Wrapper interface {
	Final() Regressor
}

// Final unwraps meta-estimators down to the regressor that was actually fitted.
func Final(r Regressor) Regressor {
	for {
		w, ok := r.(Wrapper)
		if !ok {
			return r
		}
		next := w.Final()
		if next == nil || next == r {
			return r
		}
		r = next
	}
}

// Name returns the bare type name of v, for logs and errors.
func Name(v interface{}) string {
	s := fmt.Sprintf("%T", v)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimPrefix(s, "*")
}
