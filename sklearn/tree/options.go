package tree

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth limits tree depth. 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum samples required to split a node
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum samples required in each leaf
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets the fraction of features examined at each split.
func WithMaxFeatures(fraction float64) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxFeatures = fraction
	}
}

// WithRandomState seeds the feature sampling.
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.randomState = seed
	}
}
