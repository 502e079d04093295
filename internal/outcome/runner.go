// Package outcome runs the train-model pipeline: load, select, evaluate with
// nested leave-one-out, refit, rank and write.
package outcome

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/internal/config"
	"github.com/YuminosukeSato/outcomecv/internal/dataset"
	"github.com/YuminosukeSato/outcomecv/internal/importance"
	"github.com/YuminosukeSato/outcomecv/internal/plotting"
	"github.com/YuminosukeSato/outcomecv/internal/report"
	"github.com/YuminosukeSato/outcomecv/metrics"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
	"github.com/YuminosukeSato/outcomecv/sklearn/model_selection"
	"github.com/YuminosukeSato/outcomecv/sklearn/pipeline"
)

// Result is everything a run produced.
type Result struct {
	Results report.Results
	Report  metrics.Report
	Ranking []importance.Record
}

// Runner executes one configured run.
type Runner struct {
	cfg    config.Config
	logger log.Logger
	runID  string
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRunID fixes the run identifier instead of generating a UUID.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner creates a Runner. logger may be nil to use the global logger.
func NewRunner(cfg config.Config, logger log.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = log.GetLogger()
	}
	r := &Runner{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.New().String()
	}
	r.logger = r.logger.With(log.RunIDKey, r.runID, log.ModelNameKey, cfg.Model)
	return r
}

// Run builds a Runner for cfg and runs it.
func Run(ctx context.Context, cfg config.Config, logger log.Logger) (*Result, error) {
	return NewRunner(cfg, logger).Run(ctx)
}

// Run performs the whole pipeline. Artifacts are written only once every
// computation has succeeded.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.now()
	cfg := r.cfg

	family, err := ParseFamily(cfg.Model)
	if err != nil {
		return nil, err
	}
	pipe, err := family.NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	grid, err := r.grid(family, pipe)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loading input data", log.PhaseKey, log.PhaseLoad)
	ds, err := dataset.Load(cfg.FeatureFile, cfg.FeatureClassFile, cfg.OutcomeFile)
	if err != nil {
		return nil, err
	}

	features := dataset.SelectFeatures(ds.Classes, dataset.KnownClasses, cfg.ExcludedFeatureClasses)
	if len(features) == 0 {
		return nil, errors.NewValidationError("excluded_feature_classes",
			"no features left to train on", cfg.ExcludedFeatureClasses)
	}
	X, err := ds.Features.Select(features)
	if err != nil {
		return nil, err
	}
	n := len(ds.Patients())
	y := mat.NewDense(n, 1, append([]float64(nil), ds.Outcome.Values...))
	r.logger.Info("Loaded data",
		log.SamplesKey, n,
		log.FeaturesKey, len(features),
		"outcome", ds.Outcome.Name,
	)

	search, full := r.searches(pipe, grid)

	r.logger.Info("* Performing LOO cross-validation...",
		log.PhaseKey, log.PhaseEvaluate,
		log.CandidatesKey, grid.Size(),
		log.WorkersKey, cfg.NJobs,
	)
	preds, err := model_selection.CrossValPredict(ctx, search, X, y, model_selection.NewLeaveOneOut(), cfg.NJobs)
	if err != nil {
		return nil, errors.Wrap(err, "nested cross-validation")
	}

	yTrue := ds.Outcome.Values
	rep, err := metrics.CompareToBaseline(yTrue, preds)
	if err != nil {
		return nil, err
	}
	r.logReport(rep)

	r.logger.Info("* Training model on all the data...", log.PhaseKey, log.PhaseRefit)
	if err := full.FitContext(ctx, X, y); err != nil {
		return nil, errors.Wrap(err, "full-data refit")
	}
	r.logger.Info("Selected hyperparameters",
		log.BestParamsKey, model.FormatParams(full.BestParams()),
		log.BestScoreKey, full.BestScore(),
	)

	scores, err := importance.Scores(full, X)
	if err != nil {
		return nil, err
	}
	ranking, err := importance.Rank(features, scores, ds.Classes)
	if err != nil {
		return nil, err
	}
	title := importance.Title(full)
	report.LogTable(r.logger, title, ranking)

	results := report.Results{
		RunID:             r.runID,
		Model:             string(family),
		OutcomeName:       ds.Outcome.Name,
		Patients:          report.PatientIDs(ds.Patients()),
		Params:            cfg.Params(),
		BestParams:        full.BestParams(),
		TrainingFeatures:  features,
		Preds:             preds,
		True:              yTrue,
		VarianceExplained: rep.VarianceExplained,
		RMSE:              rep.RMSE,
		MSE:               rep.MSE,
		MAE:               rep.MAE,
	}

	if err := r.write(results, ranking, title, rep, start); err != nil {
		return nil, err
	}
	return &Result{Results: results, Report: rep, Ranking: ranking}, nil
}

// grid returns the family's search grid, from --grid_file when it has one.
// Parameter names are checked against pipe so a typo fails before any data
// is read.
func (r *Runner) grid(family Family, pipe *pipeline.Pipeline) (model_selection.ParamGrid, error) {
	if r.cfg.GridFile == "" {
		return family.DefaultGrid(), nil
	}
	grids, err := config.LoadGrids(r.cfg.GridFile, FamilyNames())
	if err != nil {
		return nil, err
	}
	g, ok := grids[string(family)]
	if !ok {
		return family.DefaultGrid(), nil
	}

	known := pipe.GetParams()
	for _, name := range g.Keys() {
		if _, ok := known[pipeline.EstimatorStep+"__"+name]; !ok {
			return nil, errors.NewInputFormatError(r.cfg.GridFile, 0,
				fmt.Sprintf("unknown parameter %q for model %s", name, family))
		}
	}
	r.logger.Info("Using hyperparameter grid from file",
		log.PathKey, r.cfg.GridFile,
		log.CandidatesKey, g.Size(),
	)
	return g, nil
}

// searches builds the evaluation and refit searches. Only one level runs in
// parallel: the outer folds while evaluating (so each inner search is
// sequential) and the grid candidates while refitting.
func (r *Runner) searches(pipe *pipeline.Pipeline, grid model_selection.ParamGrid) (evaluation, refit *model_selection.GridSearchCV) {
	prefixed := grid.WithPrefix(pipeline.EstimatorStep + "__")
	evaluation = model_selection.NewGridSearchCV(pipe, prefixed,
		model_selection.WithNJobs(1),
		model_selection.WithLogger(r.logger),
	)
	refit = model_selection.NewGridSearchCV(pipe.Clone(), prefixed,
		model_selection.WithNJobs(r.cfg.NJobs),
		model_selection.WithLogger(r.logger),
	)
	return evaluation, refit
}

func (r *Runner) logReport(rep metrics.Report) {
	r.logger.Info("[Held-out RMSE, Baseline RMSE]",
		log.HeldOutKey, rep.RMSE.HeldOut, log.BaselineKey, rep.RMSE.Baseline)
	r.logger.Info("[Held-out MSE, Baseline MSE]",
		log.HeldOutKey, rep.MSE.HeldOut, log.BaselineKey, rep.MSE.Baseline)
	r.logger.Info("[Held-out MAE, Baseline MAE]",
		log.HeldOutKey, rep.MAE.HeldOut, log.BaselineKey, rep.MAE.Baseline)
	r.logger.Info("Variance explained", log.VarianceExplainedKey, rep.VarianceExplained)
	r.logger.Debug("Held-out R2", "r2", rep.R2)
}

// write stages every artifact before renaming any of them into place, so a
// failing writer leaves no partial output behind.
func (r *Runner) write(results report.Results, ranking []importance.Record, title string, rep metrics.Report, start time.Time) error {
	prefix := r.cfg.OutputPrefix
	r.logger.Info("Writing results", log.PhaseKey, log.PhaseWrite, log.PathKey, prefix)

	var batch report.Batch
	defer batch.Discard()

	if err := batch.Stage(prefix+report.ResultsSuffix, func(w io.Writer) error {
		return report.EncodeResults(w, results)
	}); err != nil {
		return err
	}
	if err := batch.Stage(prefix+report.CoefficientsSuffix, func(w io.Writer) error {
		return report.EncodeImportanceTSV(w, ranking)
	}); err != nil {
		return err
	}

	if r.cfg.Plot {
		if err := batch.Stage(prefix+plotting.PredictionsSuffix, func(w io.Writer) error {
			return plotting.Predictions(w, "Held-out predictions of "+results.OutcomeName, results.True, results.Preds)
		}); err != nil {
			return err
		}
		if err := batch.Stage(prefix+plotting.ImportanceSuffix, func(w io.Writer) error {
			return plotting.Importance(w, title, ranking)
		}); err != nil {
			return err
		}
	}

	if r.cfg.MetricsFile != "" {
		m := report.NewRunMetrics()
		m.Observe(r.runID, results.Model, results.OutcomeName,
			len(results.Preds), len(results.TrainingFeatures), rep, r.now().Sub(start))
		if err := batch.Stage(r.cfg.MetricsFile, m.Encode); err != nil {
			return err
		}
	}

	if err := batch.Commit(); err != nil {
		return err
	}
	r.logger.Debug("Run finished", log.DurationMsKey, r.now().Sub(start).Milliseconds())
	return nil
}
