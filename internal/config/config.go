// Package config holds the command-line configuration of train-model.
package config

import (
	"io"

	"github.com/alexflint/go-arg"

	"github.com/YuminosukeSato/outcomecv/internal/dataset"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// ErrHelp is returned by Parse when --help was requested.
var ErrHelp = arg.ErrHelp

// Config is parsed once in main and passed by value to every stage.
type Config struct {
	FeatureFile            string   `arg:"--feature_file,required,env:OUTCOMECV_FEATURE_FILE" help:"tab-separated feature matrix, first column is the patient id"`
	FeatureClassFile       string   `arg:"--feature_class_file,required,env:OUTCOMECV_FEATURE_CLASS_FILE" help:"tab-separated feature to class table with a Class column"`
	OutcomeFile            string   `arg:"--outcome_file,required,env:OUTCOMECV_OUTCOME_FILE" help:"tab-separated outcome table, first value column is the outcome"`
	OutputPrefix           string   `arg:"--output_prefix,required,env:OUTCOMECV_OUTPUT_PREFIX" help:"prefix for <prefix>-results.json and <prefix>-coefficients.tsv"`
	Model                  string   `arg:"--model,required,env:OUTCOMECV_MODEL" help:"model family: rf or en"`
	MaxIter                int      `arg:"--max_iter,env:OUTCOMECV_MAX_ITER" default:"1000000" help:"ElasticNet only"`
	Tol                    float64  `arg:"--tol,env:OUTCOMECV_TOL" default:"1e-7" help:"ElasticNet only"`
	Verbosity              int      `arg:"--verbosity,env:OUTCOMECV_VERBOSITY" default:"1" help:"0 warnings, 1 info, 2 debug"`
	NJobs                  int      `arg:"--n_jobs,env:OUTCOMECV_N_JOBS" default:"1" help:"parallel workers, -1 uses every CPU"`
	ExcludedFeatureClasses []string `arg:"--excluded_feature_classes,env:OUTCOMECV_EXCLUDED_FEATURE_CLASSES" help:"feature classes to leave out (clinical, tumor, blood)"`
	RandomSeed             int64    `arg:"--random_seed,env:OUTCOMECV_RANDOM_SEED" default:"12345" help:"random_state for every estimator"`
	GridFile               string   `arg:"--grid_file,env:OUTCOMECV_GRID_FILE" help:"YAML file overriding the hyperparameter grids"`
	Plot                   bool     `arg:"--plot,env:OUTCOMECV_PLOT" help:"also write prediction and importance charts as PNG"`
	MetricsFile            string   `arg:"--metrics_file,env:OUTCOMECV_METRICS_FILE" help:"write run metrics in Prometheus text format to this path"`
}

// Description implements arg.Described.
func (Config) Description() string {
	return "Trains a random forest or elastic net on clinical, tumor and blood features,\n" +
		"evaluates it with nested leave-one-out cross-validation and ranks feature importance."
}

// Parse parses args (without the program name). Help text goes to out.
func Parse(args []string, out io.Writer) (Config, error) {
	var cfg Config
	p, err := arg.NewParser(arg.Config{Program: "train-model", Out: out}, &cfg)
	if err != nil {
		return Config{}, errors.WithStack(err)
	}
	if err := p.Parse(args); err != nil {
		if err == arg.ErrHelp {
			p.WriteHelp(out)
			return Config{}, ErrHelp
		}
		p.WriteUsage(out)
		return Config{}, errors.NewValidationError("arguments", err.Error(), args)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values go-arg cannot express in tags.
func (c Config) Validate() error {
	if c.MaxIter < 1 {
		return errors.NewValidationError("max_iter", "must be positive", c.MaxIter)
	}
	if c.Tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", c.Tol)
	}
	if c.Verbosity < 0 {
		return errors.NewValidationError("verbosity", "must be non-negative", c.Verbosity)
	}
	if c.NJobs == 0 || c.NJobs < -1 {
		return errors.NewValidationError("n_jobs", "must be positive or -1", c.NJobs)
	}
	known := make(map[string]bool, len(dataset.KnownClasses))
	for _, k := range dataset.KnownClasses {
		known[dataset.Capitalize(k)] = true
	}
	for _, e := range c.ExcludedFeatureClasses {
		if !known[dataset.Capitalize(e)] {
			return errors.NewValidationError("excluded_feature_classes",
				"unknown feature class, choose from clinical, tumor, blood", e)
		}
	}
	return nil
}

// Params echoes every argument under its flag name, for the results record.
func (c Config) Params() map[string]interface{} {
	excluded := c.ExcludedFeatureClasses
	if excluded == nil {
		excluded = []string{}
	}
	return map[string]interface{}{
		"feature_file":             c.FeatureFile,
		"feature_class_file":       c.FeatureClassFile,
		"outcome_file":             c.OutcomeFile,
		"output_prefix":            c.OutputPrefix,
		"model":                    c.Model,
		"max_iter":                 c.MaxIter,
		"tol":                      c.Tol,
		"verbosity":                c.Verbosity,
		"n_jobs":                   c.NJobs,
		"excluded_feature_classes": excluded,
		"random_seed":              c.RandomSeed,
		"grid_file":                c.GridFile,
		"plot":                     c.Plot,
		"metrics_file":             c.MetricsFile,
	}
}
