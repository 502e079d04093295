package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func forestData() (*mat.Dense, *mat.Dense) {
	n := 30
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x0 := float64(i)
		x1 := float64((i * 7) % 11)
		x2 := float64((i * 3) % 5)
		X.SetRow(i, []float64{x0, x1, x2})
		y.Set(i, 0, 2*x0+0.1*x2)
	}
	return X, y
}

func TestRandomForestRegressor_FitPredict(t *testing.T) {
	X, y := forestData()

	rf := NewRandomForestRegressor(WithNEstimators(20), WithRandomState(1))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(rf.Estimators()) != 20 {
		t.Fatalf("expected 20 trees, got %d", len(rf.Estimators()))
	}

	pred, err := rf.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	var sse, sst, mean float64
	for i := 0; i < 30; i++ {
		mean += y.At(i, 0)
	}
	mean /= 30
	for i := 0; i < 30; i++ {
		d := pred.At(i, 0) - y.At(i, 0)
		sse += d * d
		m := y.At(i, 0) - mean
		sst += m * m
	}
	if r2 := 1 - sse/sst; r2 < 0.9 {
		t.Errorf("training R2 = %.3f, want >= 0.9", r2)
	}
}

func TestRandomForestRegressor_FeatureImportances(t *testing.T) {
	X, y := forestData()

	rf := NewRandomForestRegressor(WithNEstimators(25), WithRandomState(3))
	if err := rf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	imp, err := rf.FeatureImportances()
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, v := range imp {
		if v < 0 {
			t.Errorf("negative importance %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", sum)
	}
	if imp[0] <= imp[1] || imp[0] <= imp[2] {
		t.Errorf("driving feature should rank first: %v", imp)
	}
}

func TestRandomForestRegressor_ConstantTargetImportances(t *testing.T) {
	X, _ := forestData()
	y := mat.NewDense(30, 1, nil)
	for i := 0; i < 30; i++ {
		y.Set(i, 0, 2.5)
	}

	rf := NewRandomForestRegressor(WithNEstimators(5))
	if err := rf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	imp, _ := rf.FeatureImportances()
	for j, v := range imp {
		if v != 0 {
			t.Errorf("importance[%d] = %v, want 0", j, v)
		}
	}
	pred, _ := rf.Predict(X)
	if pred.At(0, 0) != 2.5 {
		t.Errorf("pred = %v, want 2.5", pred.At(0, 0))
	}
}

func TestRandomForestRegressor_DeterministicAcrossWorkers(t *testing.T) {
	X, y := forestData()

	fit := func(nJobs int) []float64 {
		rf := NewRandomForestRegressor(
			WithNEstimators(16),
			WithMaxFeatures(0.33),
			WithRandomState(12345),
			WithNJobs(nJobs),
		)
		if err := rf.Fit(X, y); err != nil {
			t.Fatal(err)
		}
		pred, _ := rf.Predict(X)
		imp, _ := rf.FeatureImportances()
		return append(mat.Col(nil, 0, pred), imp...)
	}

	serial := fit(1)
	for _, jobs := range []int{2, 4, -1} {
		got := fit(jobs)
		for i := range serial {
			if got[i] != serial[i] {
				t.Fatalf("n_jobs=%d differs from serial fit at %d: %v vs %v", jobs, i, got[i], serial[i])
			}
		}
	}
}

func TestRandomForestRegressor_Params(t *testing.T) {
	rf := NewRandomForestRegressor()
	if err := rf.SetParams(map[string]interface{}{"max_depth": 3, "max_features": 0.33}); err != nil {
		t.Fatal(err)
	}
	params := rf.Clone().GetParams()
	if params["max_depth"] != 3 || params["max_features"] != 0.33 || params["n_estimators"] != 100 {
		t.Errorf("unexpected clone params: %v", params)
	}
	if err := rf.SetParams(map[string]interface{}{"alpha": 1}); err == nil {
		t.Error("expected error for unknown parameter")
	}
	if _, err := NewRandomForestRegressor().Predict(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("expected not fitted error")
	}
}
