// Package pipeline chains transformers with a final regressor.
package pipeline

import (
	"context"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// EstimatorStep is the parameter prefix that addresses the final regressor,
// as in "estimator__alpha".
const EstimatorStep = "estimator"

// Step is a named transformer stage.
type Step struct {
	Name        string
	Transformer model.Transformer
}

// Pipeline fits each transformer on the training rows, then fits the final
// regressor on the transformed matrix. Predict replays the fitted transforms.
type Pipeline struct {
	steps     []Step
	estimator model.Regressor
	fitted    bool
}

// New builds a pipeline. Step names must be unique and must not collide
// with EstimatorStep.
func New(estimator model.Regressor, steps ...Step) (*Pipeline, error) {
	seen := map[string]bool{EstimatorStep: true}
	for _, s := range steps {
		if s.Name == "" || seen[s.Name] {
			return nil, errors.NewValidationError("steps", "step names must be unique and non-empty", s.Name)
		}
		seen[s.Name] = true
	}
	return &Pipeline{steps: steps, estimator: estimator}, nil
}

// Fit implements model.Fitter.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	return p.FitContext(context.Background(), X, y)
}

// FitContext fits the steps, then hands ctx to the final regressor when it
// implements model.ContextFitter.
func (p *Pipeline) FitContext(ctx context.Context, X, y mat.Matrix) error {
	Xt := X
	for _, s := range p.steps {
		out, err := s.Transformer.FitTransform(Xt)
		if err != nil {
			return errors.Wrapf(err, "pipeline step %q", s.Name)
		}
		Xt = out
	}
	if err := model.FitContext(ctx, p.estimator, Xt, y); err != nil {
		return err
	}
	p.fitted = true
	return nil
}

// Predict implements model.Predictor.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.fitted {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}
	Xt, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.estimator.Predict(Xt)
}

// Transform applies the fitted transformer steps only.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	Xt := X
	for _, s := range p.steps {
		out, err := s.Transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline step %q", s.Name)
		}
		Xt = out
	}
	return Xt, nil
}

// Estimator returns the final regressor.
func (p *Pipeline) Estimator() model.Regressor {
	return p.estimator
}

// Steps returns the transformer stages.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// GetParams reports the final regressor's parameters with the estimator prefix.
func (p *Pipeline) GetParams() map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range p.estimator.GetParams() {
		out[EstimatorStep+"__"+k] = v
	}
	return out
}

// SetParams routes "estimator__name" keys to the final regressor. Keys without
// the prefix are rejected.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	routed := make(map[string]interface{}, len(params))
	for k, v := range params {
		step, name, ok := strings.Cut(k, "__")
		if !ok || step != EstimatorStep {
			return errors.NewValidationError(k, "pipeline parameters must be addressed as estimator__<name>", v)
		}
		routed[name] = v
	}
	p.fitted = false
	return p.estimator.SetParams(routed)
}

// Clone implements model.Regressor.
func (p *Pipeline) Clone() model.Regressor {
	steps := make([]Step, len(p.steps))
	for i, s := range p.steps {
		steps[i] = Step{Name: s.Name, Transformer: s.Transformer.Clone()}
	}
	return &Pipeline{steps: steps, estimator: p.estimator.Clone()}
}

// Final returns the final regressor so capability checks can see through
// the pipeline (see model.Final).
func (p *Pipeline) Final() model.Regressor {
	return p.estimator
}
