package ensemble

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.nEstimators = n
	}
}

// WithMaxDepth limits the depth of every tree. 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestRegressor) {
		rf.maxDepth = depth
	}
}

// WithMinSamplesSplit sets min_samples_split for every tree.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets min_samples_leaf for every tree.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets the fraction of features examined at each split.
func WithMaxFeatures(fraction float64) Option {
	return func(rf *RandomForestRegressor) {
		rf.maxFeatures = fraction
	}
}

// WithBootstrap toggles sampling rows with replacement for each tree.
func WithBootstrap(bootstrap bool) Option {
	return func(rf *RandomForestRegressor) {
		rf.bootstrap = bootstrap
	}
}

// WithRandomState seeds bootstrap draws and per-tree feature sampling.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestRegressor) {
		rf.randomState = seed
	}
}

// WithNJobs sets how many trees are grown concurrently (-1 uses every CPU).
func WithNJobs(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.nJobs = n
	}
}
