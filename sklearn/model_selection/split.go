// Package model_selection provides cross-validation splitters, grid search
// and out-of-fold prediction.
package model_selection

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Splitter generates train/test index sets over nSamples rows.
type Splitter interface {
	Split(nSamples int) ([]CVFold, error)
	GetNSplits(nSamples int) int
}

// CVFold represents a single fold in cross-validation
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// LeaveOneOut holds out each sample exactly once.
type LeaveOneOut struct{}

// NewLeaveOneOut creates a leave-one-out splitter.
func NewLeaveOneOut() *LeaveOneOut {
	return &LeaveOneOut{}
}

// GetNSplits returns nSamples.
func (LeaveOneOut) GetNSplits(nSamples int) int {
	return nSamples
}

// Split returns fold i = train on every row except i (ascending), test on {i}.
func (LeaveOneOut) Split(nSamples int) ([]CVFold, error) {
	if nSamples < 2 {
		return nil, errors.NewValueError("LeaveOneOut.Split",
			"cannot perform leave-one-out with fewer than 2 samples")
	}
	folds := make([]CVFold, nSamples)
	for i := 0; i < nSamples; i++ {
		train := make([]int, 0, nSamples-1)
		for j := 0; j < nSamples; j++ {
			if j != i {
				train = append(train, j)
			}
		}
		folds[i] = CVFold{TrainIndices: train, TestIndices: []int{i}}
	}
	return folds, nil
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed int) *KFold {
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits(int) int {
	return kf.NSplits
}

// Split generates train/test indices for each fold. The first
// nSamples % NSplits folds get one extra test sample. Train indices are
// ascending.
func (kf *KFold) Split(nSamples int) ([]CVFold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", kf.NSplits)
	}
	if kf.NSplits > nSamples {
		return nil, errors.NewValueError("KFold.Split",
			"n_splits cannot be greater than the number of samples")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	current := 0
	inTest := make([]bool, nSamples)
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[current:current+testSize])

		for k := range inTest {
			inTest[k] = false
		}
		for _, idx := range testIndices {
			inTest[idx] = true
		}
		trainIndices := make([]int, 0, nSamples-testSize)
		for j := 0; j < nSamples; j++ {
			if !inTest[j] {
				trainIndices = append(trainIndices, j)
			}
		}

		folds[i] = CVFold{TrainIndices: trainIndices, TestIndices: testIndices}
		current += testSize
	}
	return folds, nil
}
