// Package report writes the run artifacts: the JSON results record, the
// ranked importance TSV, and the optional Prometheus metrics textfile.
package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/YuminosukeSato/outcomecv/metrics"
)

// Suffixes appended to --output_prefix.
const (
	ResultsSuffix      = "-results.json"
	CoefficientsSuffix = "-coefficients.tsv"
)

// Results is the JSON record written to <prefix>-results.json.
type Results struct {
	RunID             string                 `json:"run_id"`
	Model             string                 `json:"model"`
	OutcomeName       string                 `json:"outcome_name"`
	Patients          []interface{}          `json:"patients"`
	Params            map[string]interface{} `json:"params"`
	BestParams        map[string]interface{} `json:"best_params"`
	TrainingFeatures  []string               `json:"training_features"`
	Preds             []float64              `json:"preds"`
	True              []float64              `json:"true"`
	VarianceExplained float64                `json:"variance_explained"`
	RMSE              metrics.Pair           `json:"rmse"`
	MSE               metrics.Pair           `json:"mse"`
	MAE               metrics.Pair           `json:"mae"`
}

// PatientIDs renders identifiers as numbers when every one parses as a
// float, and as strings otherwise.
func PatientIDs(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	numeric := make([]float64, len(ids))
	for i, id := range ids {
		v, err := strconv.ParseFloat(id, 64)
		if err != nil {
			for k, s := range ids {
				out[k] = s
			}
			return out
		}
		numeric[i] = v
	}
	for i, v := range numeric {
		out[i] = v
	}
	return out
}

// EncodeResults writes r as indented JSON.
func EncodeResults(w io.Writer, r Results) error {
	if r.TrainingFeatures == nil {
		r.TrainingFeatures = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteResults writes r as JSON to path.
func WriteResults(path string, r Results) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeResults(w, r)
	})
}
