// Package tree implements CART decision trees for regression.
package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/outcomecv/core/model"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// Node is one entry of the flattened tree. Leaves have Left == Right == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Impurity  float64
	NSamples  int
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// DecisionTreeRegressor は平均二乗誤差を基準とする回帰木
type DecisionTreeRegressor struct {
	state *model.StateManager

	// Hyperparameters
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     float64
	randomState     int64

	// Learned structure
	nodes       []Node
	importances []float64

	// Fit-time scratch
	X   *mat.Dense
	y   []float64
	rng *rand.Rand
}

// NewDecisionTreeRegressor creates a tree with scikit-learn defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		state:           model.NewStateManager(),
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		maxFeatures:     1.0,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

func (dt *DecisionTreeRegressor) validate() error {
	if dt.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 0 (0 means unlimited)", dt.maxDepth)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", dt.minSamplesLeaf)
	}
	if dt.maxFeatures <= 0 || dt.maxFeatures > 1 {
		return errors.NewValidationError("max_features", "must be in (0, 1]", dt.maxFeatures)
	}
	return nil
}

// Fit builds the tree on X and the column vector y.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	if err := dt.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", 1, yCols, 1)
	}

	dt.X = mat.DenseCopyOf(X)
	dt.y = mat.Col(nil, 0, y)
	seed := uint64(dt.randomState)
	dt.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	defer func() {
		dt.X, dt.y, dt.rng = nil, nil, nil
	}()

	dt.nodes = dt.nodes[:0]
	dt.importances = make([]float64, cols)

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	dt.buildNode(indices, 0)

	var total float64
	for _, v := range dt.importances {
		total += v
	}
	if total > 0 {
		for j := range dt.importances {
			dt.importances[j] /= total
		}
	}

	dt.state.SetFitted(cols, rows)
	return nil
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	found     bool
}

// buildNode appends the node for indices and returns its position.
func (dt *DecisionTreeRegressor) buildNode(indices []int, depth int) int {
	mean, impurity := meanAndVariance(dt.y, indices)
	nodeIdx := len(dt.nodes)
	dt.nodes = append(dt.nodes, Node{
		Feature:  -1,
		Left:     -1,
		Right:    -1,
		Value:    mean,
		Impurity: impurity,
		NSamples: len(indices),
	})

	if (dt.maxDepth > 0 && depth >= dt.maxDepth) ||
		len(indices) < dt.minSamplesSplit ||
		len(indices) < 2*dt.minSamplesLeaf ||
		impurity <= 1e-12 {
		return nodeIdx
	}

	best := dt.findBestSplit(indices, impurity)
	if !best.found {
		return nodeIdx
	}

	var left, right []int
	for _, idx := range indices {
		if dt.X.At(idx, best.feature) <= best.threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	leftIdx := dt.buildNode(left, depth+1)
	rightIdx := dt.buildNode(right, depth+1)

	node := &dt.nodes[nodeIdx]
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = leftIdx
	node.Right = rightIdx

	// weighted impurity decrease
	l, r := dt.nodes[leftIdx], dt.nodes[rightIdx]
	dt.importances[best.feature] += float64(len(indices))*impurity -
		float64(l.NSamples)*l.Impurity - float64(r.NSamples)*r.Impurity

	return nodeIdx
}

// candidateFeatures draws max(1, floor(maxFeatures*p)) features without replacement.
func (dt *DecisionTreeRegressor) candidateFeatures() []int {
	_, p := dt.X.Dims()
	k := int(dt.maxFeatures * float64(p))
	if k < 1 {
		k = 1
	}
	if k >= p {
		all := make([]int, p)
		for j := range all {
			all[j] = j
		}
		return all
	}
	return dt.rng.Perm(p)[:k]
}

// findBestSplit scans sorted feature values and maximises the reduction in
// summed squared error. Ties keep the earliest candidate.
func (dt *DecisionTreeRegressor) findBestSplit(indices []int, parentImpurity float64) split {
	n := len(indices)
	best := split{gain: 0}
	parentSSE := parentImpurity * float64(n)

	type pair struct {
		value  float64
		target float64
	}
	values := make([]pair, n)

	for _, feature := range dt.candidateFeatures() {
		var totalSum float64
		for i, idx := range indices {
			values[i] = pair{value: dt.X.At(idx, feature), target: dt.y[idx]}
			totalSum += dt.y[idx]
		}
		sort.SliceStable(values, func(a, b int) bool {
			return values[a].value < values[b].value
		})

		var leftSum, leftSq float64
		var totalSq float64
		for _, v := range values {
			totalSq += v.target * v.target
		}

		for i := 0; i < n-1; i++ {
			t := values[i].target
			leftSum += t
			leftSq += t * t

			if values[i].value == values[i+1].value {
				continue
			}
			leftCount := i + 1
			rightCount := n - leftCount
			if leftCount < dt.minSamplesLeaf || rightCount < dt.minSamplesLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			leftSSE := leftSq - leftSum*leftSum/float64(leftCount)
			rightSSE := rightSq - rightSum*rightSum/float64(rightCount)
			gain := parentSSE - leftSSE - rightSSE

			if gain > best.gain+1e-12 {
				threshold := (values[i].value + values[i+1].value) / 2
				// midpoint can round up to the right value
				if threshold == values[i+1].value {
					threshold = values[i].value
				}
				best = split{feature: feature, threshold: threshold, gain: gain, found: true}
			}
		}
	}
	return best
}

func meanAndVariance(y []float64, indices []int) (float64, float64) {
	if len(indices) == 0 {
		return 0, 0
	}
	var sum float64
	for _, idx := range indices {
		sum += y[idx]
	}
	mean := sum / float64(len(indices))
	var ss float64
	for _, idx := range indices {
		d := y[idx] - mean
		ss += d * d
	}
	return mean, ss / float64(len(indices))
}

// Predict returns the leaf mean reached by each row.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if err := dt.state.RequireFitted("DecisionTreeRegressor", "Predict", cols); err != nil {
		return nil, err
	}
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, dt.predictRow(X, i))
	}
	return out, nil
}

func (dt *DecisionTreeRegressor) predictRow(X mat.Matrix, row int) float64 {
	idx := 0
	for {
		node := &dt.nodes[idx]
		if node.IsLeaf() {
			return node.Value
		}
		v := X.At(row, node.Feature)
		if v <= node.Threshold || math.IsNaN(v) {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// FeatureImportances returns the normalised impurity decrease per feature.
// A tree that never split reports all zeros.
func (dt *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "FeatureImportances")
	}
	out := make([]float64, len(dt.importances))
	copy(out, dt.importances)
	return out, nil
}

// Nodes returns the flattened tree.
func (dt *DecisionTreeRegressor) Nodes() []Node {
	return dt.nodes
}

// Depth returns the depth of the fitted tree (a single leaf has depth 0).
func (dt *DecisionTreeRegressor) Depth() int {
	if len(dt.nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		n := dt.nodes[idx]
		if n.IsLeaf() {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}

// GetParams returns the hyperparameters
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      dt.maxFeatures,
		"random_state":      dt.randomState,
	}
}

// SetParams sets the hyperparameters
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var err error
		switch key {
		case "max_depth":
			dt.maxDepth, err = model.ParamInt(key, value)
		case "min_samples_split":
			dt.minSamplesSplit, err = model.ParamInt(key, value)
		case "min_samples_leaf":
			dt.minSamplesLeaf, err = model.ParamInt(key, value)
		case "max_features":
			dt.maxFeatures, err = model.ParamFloat(key, value)
		case "random_state":
			var seed int
			seed, err = model.ParamInt(key, value)
			dt.randomState = int64(seed)
		default:
			err = errors.NewValidationError(key, "unknown DecisionTreeRegressor parameter", value)
		}
		if err != nil {
			return err
		}
	}
	dt.state.Reset()
	return nil
}

// Clone implements model.Regressor.
func (dt *DecisionTreeRegressor) Clone() model.Regressor {
	return NewDecisionTreeRegressor(
		WithMaxDepth(dt.maxDepth),
		WithMinSamplesSplit(dt.minSamplesSplit),
		WithMinSamplesLeaf(dt.minSamplesLeaf),
		WithMaxFeatures(dt.maxFeatures),
		WithRandomState(dt.randomState),
	)
}
