package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

var requiredArgs = []string{
	"--feature_file", "f.tsv",
	"--feature_class_file", "c.tsv",
	"--outcome_file", "o.tsv",
	"--output_prefix", "out/run",
	"--model", "en",
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(requiredArgs, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "f.tsv", cfg.FeatureFile)
	assert.Equal(t, "en", cfg.Model)
	assert.Equal(t, 1000000, cfg.MaxIter)
	assert.Equal(t, 1e-7, cfg.Tol)
	assert.Equal(t, 1, cfg.Verbosity)
	assert.Equal(t, 1, cfg.NJobs)
	assert.Equal(t, int64(12345), cfg.RandomSeed)
	assert.Empty(t, cfg.ExcludedFeatureClasses)
	assert.False(t, cfg.Plot)
}

func TestParse_ExcludedClassesAndOverrides(t *testing.T) {
	args := append(append([]string{}, requiredArgs...),
		"--n_jobs", "-1",
		"--random_seed", "7",
		"--excluded_feature_classes", "tumor", "Blood",
	)
	cfg, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, -1, cfg.NJobs)
	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.Equal(t, []string{"tumor", "Blood"}, cfg.ExcludedFeatureClasses)
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("OUTCOMECV_MAX_ITER", "500")
	cfg, err := Parse(requiredArgs, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxIter)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing required", []string{"--model", "rf"}},
		{"unknown class", append(append([]string{}, requiredArgs...), "--excluded_feature_classes", "imaging")},
		{"zero jobs", append(append([]string{}, requiredArgs...), "--n_jobs", "0")},
		{"negative tol", append(append([]string{}, requiredArgs...), "--tol", "-1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			var ve *errors.ValidationError
			assert.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"--help"}, &out)
	assert.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, out.String(), "--feature_file")
}

func TestParams_EchoesEveryFlag(t *testing.T) {
	cfg, err := Parse(requiredArgs, &bytes.Buffer{})
	require.NoError(t, err)

	params := cfg.Params()
	assert.Equal(t, "en", params["model"])
	assert.Equal(t, []string{}, params["excluded_feature_classes"])
	assert.Len(t, params, 14)
}

func TestLoadGrids(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("en:\n  alpha: [0.1, 1]\n  l1_ratio: [0.5]\nrf:\n  max_depth: [0, 4]\n"), 0o644))

	families := []string{"rf", "en"}
	grids, err := LoadGrids(path, families)
	require.NoError(t, err)
	require.Contains(t, grids, "en")
	assert.Equal(t, 2, grids["en"].Size())
	assert.Equal(t, []interface{}{0, 4}, grids["rf"]["max_depth"])

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("en:\n  alpha: []\n"), 0o644))
	_, err = LoadGrids(bad, families)
	assert.Error(t, err)

	_, err = LoadGrids(filepath.Join(t.TempDir(), "absent.yaml"), families)
	var ife *errors.InputFormatError
	assert.True(t, errors.As(err, &ife))
}

func TestLoadGrids_UnknownFamily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("EN:\n  alpha: [0.1]\n"), 0o644))

	_, err := LoadGrids(path, []string{"rf", "en"})
	var ife *errors.InputFormatError
	require.True(t, errors.As(err, &ife), "got %v", err)
	assert.Equal(t, path, ife.Path)
	assert.Contains(t, ife.Reason, `"EN"`)
	assert.Contains(t, ife.Reason, "rf or en")
}
