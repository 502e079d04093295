package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/outcomecv/internal/importance"
	"github.com/YuminosukeSato/outcomecv/metrics"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
	"github.com/YuminosukeSato/outcomecv/pkg/log"
)

var sampleRecords = []importance.Record{
	{Feature: "TMB", Score: -0.5, Class: "Tumor", Rank: 1},
	{Feature: "LDH", Score: 0.5, Class: "Blood", Rank: 2},
	{Feature: "Age", Score: 0.125, Class: "Clinical", Rank: 3},
	{Feature: "Sex", Score: 0, Class: "Clinical", Rank: 4},
}

func TestImportanceTSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run"+CoefficientsSuffix)
	require.NoError(t, WriteImportanceTSV(path, sampleRecords))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "Feature\tScore\tClass", lines[0])
	assert.Len(t, lines, 5)

	got, err := ReadImportanceTSV(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords, got)
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run"+ResultsSuffix)
	r := Results{
		RunID:            "abc",
		Model:            "en",
		OutcomeName:      "Survival",
		Patients:         PatientIDs([]string{"1", "2"}),
		Params:           map[string]interface{}{"model": "en"},
		BestParams:       map[string]interface{}{"estimator__alpha": 0.1},
		TrainingFeatures: []string{"Age"},
		Preds:            []float64{1.5, 2.5},
		True:             []float64{1, 3},
		RMSE:             metrics.Pair{HeldOut: 0.5, Baseline: 2},
	}
	require.NoError(t, WriteResults(path, r))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{"patients", "params", "training_features", "preds", "true",
		"variance_explained", "rmse", "mse", "mae", "run_id", "best_params"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, []interface{}{1.0, 2.0}, decoded["patients"])
	assert.Equal(t, map[string]interface{}{"held-out": 0.5, "baseline": 2.0}, decoded["rmse"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteResults_MissingDirectory(t *testing.T) {
	err := WriteResults(filepath.Join(t.TempDir(), "missing", "run.json"), Results{})
	assert.Error(t, err)
}

func TestPatientIDs(t *testing.T) {
	assert.Equal(t, []interface{}{1.0, 2.5}, PatientIDs([]string{"1", "2.5"}))
	assert.Equal(t, []interface{}{"1", "P2"}, PatientIDs([]string{"1", "P2"}))
}

func TestLogTable(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	LogTable(logger, "ElasticNet coefficients", sampleRecords)

	assert.True(t, logger.ContainsMessage("ElasticNet coefficients"))
	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(entries), 3+len(sampleRecords))
	assert.True(t, strings.HasPrefix(entries[0]["message"].(string), "---"))

	table := RenderTable(sampleRecords)
	assert.Contains(t, table, "TMB")
	assert.Less(t, strings.Index(table, "TMB"), strings.Index(table, "Sex"))
}

func TestRunMetrics(t *testing.T) {
	m := NewRunMetrics()
	m.Observe("run-1", "rf", "Survival", 10, 3, metrics.Report{
		RMSE:              metrics.Pair{HeldOut: 1, Baseline: 2},
		VarianceExplained: 0.4,
	}, 1500*time.Millisecond)

	assert.Equal(t, 0.4, testutil.ToFloat64(m.variance))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.samples))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.errors.WithLabelValues("rmse", "baseline")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, m.WriteTextfile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "outcomecv_variance_explained 0.4")
	assert.Contains(t, string(raw), `outcomecv_run_info{model="rf",outcome="Survival",run_id="run-1"} 1`)
}

func TestBatch_CommitRollsBackOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "run"+ResultsSuffix)
	blocked := filepath.Join(dir, "run"+CoefficientsSuffix)
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "occupied"), 0o755))

	var b Batch
	defer b.Discard()
	require.NoError(t, b.Stage(first, func(w io.Writer) error { return EncodeResults(w, Results{}) }))
	require.NoError(t, b.Stage(blocked, func(w io.Writer) error { return EncodeImportanceTSV(w, sampleRecords) }))

	require.Error(t, b.Commit())

	_, err := os.Stat(first)
	assert.True(t, os.IsNotExist(err), "committed targets are removed again")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the blocking directory remains")
	assert.True(t, entries[0].IsDir())
}

func TestBatch_DiscardLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	var b Batch
	require.NoError(t, b.Stage(filepath.Join(dir, "a.json"), func(w io.Writer) error {
		return EncodeResults(w, Results{})
	}))
	err := b.Stage(filepath.Join(dir, "b.tsv"), func(io.Writer) error {
		return errors.New("encoder failed")
	})
	require.Error(t, err)
	b.Discard()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, b.Commit(), "nothing left to commit")
}

func TestRunMetrics_Encode(t *testing.T) {
	m := NewRunMetrics()
	m.Observe("run-2", "en", "OS", 4, 2, metrics.Report{VarianceExplained: 0.25}, time.Second)

	var buf strings.Builder
	require.NoError(t, m.Encode(&buf))
	assert.Contains(t, buf.String(), "# TYPE outcomecv_samples gauge")
	assert.Contains(t, buf.String(), "outcomecv_run_duration_seconds 1")
}
