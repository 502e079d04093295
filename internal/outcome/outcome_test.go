package outcome

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/outcomecv/internal/config"
	"github.com/YuminosukeSato/outcomecv/internal/plotting"
	"github.com/YuminosukeSato/outcomecv/internal/report"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
)

// fixture writes a ten-patient cohort with two clinical features and one
// tumor feature. outcome maps the patient index to the outcome value.
func fixture(t *testing.T, outcome func(i int) float64) config.Config {
	t.Helper()
	dir := t.TempDir()

	var features, outcomes strings.Builder
	features.WriteString("patient\tAge\tLDH\tTMB\n")
	outcomes.WriteString("patient\tOS\n")
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("P%02d", i+1)
		age := 40 + 3*i
		ldh := float64((i*7)%10) / 2
		tmb := float64((i*3)%5) + 0.5
		fmt.Fprintf(&features, "%s\t%d\t%g\t%g\n", id, age, ldh, tmb)
		fmt.Fprintf(&outcomes, "%s\t%g\n", id, outcome(i))
	}
	classes := "feature\tClass\nAge\tClinical\nLDH\tClinical\nTMB\tTumor\n"

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	return config.Config{
		FeatureFile:      write("features.tsv", features.String()),
		FeatureClassFile: write("classes.tsv", classes),
		OutcomeFile:      write("outcome.tsv", outcomes.String()),
		OutputPrefix:     filepath.Join(dir, "run"),
		Model:            string(ElasticNet),
		MaxIter:          1000000,
		Tol:              1e-7,
		Verbosity:        1,
		NJobs:            1,
		RandomSeed:       12345,
	}
}

func linearOutcome(i int) float64 {
	return 0.5*float64(40+3*i) - float64((i*3)%5) + 2
}

func readResults(t *testing.T, prefix string) report.Results {
	t.Helper()
	raw, err := os.ReadFile(prefix + report.ResultsSuffix)
	require.NoError(t, err)
	var r report.Results
	require.NoError(t, json.Unmarshal(raw, &r))
	return r
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily("rf")
	require.NoError(t, err)
	assert.Equal(t, RandomForest, f)

	_, err = ParseFamily("svm")
	var unsupported *errors.UnsupportedModelError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "svm", unsupported.Model)
}

func TestFamily_PipelineAcceptsDefaultGrid(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	for _, f := range Families {
		pipe, err := f.NewPipeline(cfg)
		require.NoError(t, err)
		for _, candidate := range f.DefaultGrid().WithPrefix("estimator__").Candidates() {
			assert.NoError(t, pipe.Clone().SetParams(candidate), "%s %v", f, candidate)
		}
	}
}

func TestRun_ElasticNetWritesArtifacts(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	logger, _ := log.NewTestLogger(log.LevelDebug)

	res, err := NewRunner(cfg, logger, WithRunID("run-1")).Run(context.Background())
	require.NoError(t, err)

	got := readResults(t, cfg.OutputPrefix)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "en", got.Model)
	assert.Equal(t, "OS", got.OutcomeName)
	assert.Len(t, got.Patients, 10)
	assert.Equal(t, []string{"Age", "LDH", "TMB"}, got.TrainingFeatures)
	assert.Len(t, got.Preds, 10)
	assert.Equal(t, res.Results.Preds, got.Preds)
	assert.Contains(t, got.BestParams, "estimator__alpha")
	assert.Equal(t, "en", got.Params["model"])
	assert.Less(t, got.RMSE.HeldOut, got.RMSE.Baseline)

	ranking, err := report.ReadImportanceTSV(cfg.OutputPrefix + report.CoefficientsSuffix)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "Age", ranking[0].Feature)
	assert.Equal(t, "Clinical", ranking[0].Class)

	for _, msg := range []string{
		"* Performing LOO cross-validation...",
		"[Held-out RMSE, Baseline RMSE]",
		"* Training model on all the data...",
		"ElasticNet coefficients",
	} {
		assert.True(t, logger.ContainsMessage(msg), msg)
	}
	assert.True(t, logger.ContainsField(log.RunIDKey, "run-1"))

	_, err = os.Stat(cfg.OutputPrefix + plotting.PredictionsSuffix)
	assert.True(t, os.IsNotExist(err), "charts are opt-in")
}

func TestRun_Deterministic(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	first, err := NewRunner(cfg, nil, WithRunID("a")).Run(context.Background())
	require.NoError(t, err)

	cfg.OutputPrefix += "-again"
	cfg.NJobs = 3
	second, err := NewRunner(cfg, nil, WithRunID("b")).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Results.Preds, second.Results.Preds)
	assert.Equal(t, first.Results.BestParams, second.Results.BestParams)
	assert.Equal(t, first.Report, second.Report)
	assert.Equal(t, first.Ranking, second.Ranking)
}

func TestRun_ConstantOutcome(t *testing.T) {
	cfg := fixture(t, func(int) float64 { return 5 })

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Report.RMSE.HeldOut)
	assert.Equal(t, 0.0, res.Report.RMSE.Baseline)
	for _, p := range res.Results.Preds {
		assert.Equal(t, 5.0, p)
	}
	for _, r := range res.Ranking {
		assert.Equal(t, 0.0, r.Score, r.Feature)
	}
}

func TestRun_NoFeaturesLeft(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.ExcludedFeatureClasses = []string{"clinical", "tumor"}

	_, err := Run(context.Background(), cfg, nil)
	var validation *errors.ValidationError
	require.True(t, errors.As(err, &validation), "got %v", err)

	_, statErr := os.Stat(cfg.OutputPrefix + report.ResultsSuffix)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_ExcludedClassDropsFeatures(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.ExcludedFeatureClasses = []string{"Tumor"}

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "LDH"}, res.Results.TrainingFeatures)
	assert.Len(t, res.Ranking, 2)
}

func TestRun_UnsupportedModelWritesNothing(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.Model = "svm"

	_, err := Run(context.Background(), cfg, nil)
	var unsupported *errors.UnsupportedModelError
	require.True(t, errors.As(err, &unsupported))

	matches, globErr := filepath.Glob(cfg.OutputPrefix + "*")
	require.NoError(t, globErr)
	assert.Empty(t, matches)
}

func TestRun_RandomForestWithGridFileAndExtras(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.Model = string(RandomForest)
	cfg.Plot = true
	cfg.NJobs = 2
	cfg.MetricsFile = cfg.OutputPrefix + ".prom"
	cfg.GridFile = filepath.Join(filepath.Dir(cfg.OutputPrefix), "grid.yaml")
	require.NoError(t, os.WriteFile(cfg.GridFile,
		[]byte("rf:\n  max_depth: [2]\n  min_samples_leaf: [1]\n"), 0o644))

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"estimator__max_depth":        2,
		"estimator__min_samples_leaf": 1,
	}, res.Results.BestParams)

	var sum float64
	for _, r := range res.Ranking {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		sum += r.Score
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	for _, suffix := range []string{plotting.PredictionsSuffix, plotting.ImportanceSuffix} {
		info, err := os.Stat(cfg.OutputPrefix + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "outcomecv_")
}

func TestRun_Cancelled(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	_, statErr := os.Stat(cfg.OutputPrefix + report.ResultsSuffix)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_WriteFailureLeavesNoArtifacts(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.Plot = true
	dir := filepath.Dir(cfg.OutputPrefix)
	cfg.MetricsFile = filepath.Join(dir, "missing", "run.prom")

	_, err := Run(context.Background(), cfg, nil)
	require.Error(t, err)

	for _, suffix := range []string{report.ResultsSuffix, report.CoefficientsSuffix,
		plotting.PredictionsSuffix, plotting.ImportanceSuffix} {
		_, statErr := os.Stat(cfg.OutputPrefix + suffix)
		assert.True(t, os.IsNotExist(statErr), suffix)
	}
	temps, globErr := filepath.Glob(filepath.Join(dir, ".run*"))
	require.NoError(t, globErr)
	assert.Empty(t, temps)
}

func TestRun_GridFileUnknownFamily(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.GridFile = filepath.Join(filepath.Dir(cfg.OutputPrefix), "grid.yaml")
	require.NoError(t, os.WriteFile(cfg.GridFile, []byte("EN:\n  alpha: [0.1]\n"), 0o644))

	_, err := Run(context.Background(), cfg, nil)
	var ife *errors.InputFormatError
	require.True(t, errors.As(err, &ife), "got %v", err)
	assert.Equal(t, cfg.GridFile, ife.Path)

	matches, globErr := filepath.Glob(cfg.OutputPrefix + "*")
	require.NoError(t, globErr)
	assert.Empty(t, matches)
}

func TestRun_GridFileUnknownParameterFailsBeforeLoad(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.FeatureFile = filepath.Join(filepath.Dir(cfg.OutputPrefix), "absent.tsv")
	cfg.GridFile = filepath.Join(filepath.Dir(cfg.OutputPrefix), "grid.yaml")
	require.NoError(t, os.WriteFile(cfg.GridFile, []byte("en:\n  alpah: [0.1]\n"), 0o644))
	logger, _ := log.NewTestLogger(log.LevelDebug)

	_, err := Run(context.Background(), cfg, logger)
	var ife *errors.InputFormatError
	require.True(t, errors.As(err, &ife), "got %v", err)
	assert.Equal(t, cfg.GridFile, ife.Path)
	assert.Contains(t, ife.Reason, `"alpah"`)
	assert.False(t, logger.ContainsMessage("Loading input data"))
}

func TestRunner_ParallelisesOneLevel(t *testing.T) {
	cfg := fixture(t, linearOutcome)
	cfg.Model = string(RandomForest)
	cfg.NJobs = 4

	pipe, err := RandomForest.NewPipeline(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, pipe.GetParams()["estimator__n_jobs"])

	evaluation, refit := NewRunner(cfg, nil).searches(pipe, RandomForest.DefaultGrid())
	assert.Equal(t, 1, evaluation.NJobs(), "inner searches run inside parallel outer folds")
	assert.Equal(t, 4, refit.NJobs())
}
