package linear

// Option is a function that configures ElasticNet
type Option func(*ElasticNet)

// WithAlpha sets the overall regularization strength.
func WithAlpha(alpha float64) Option {
	return func(en *ElasticNet) {
		en.alpha = alpha
	}
}

// WithL1Ratio sets the L1 share of the penalty (1 is lasso, 0 is ridge).
func WithL1Ratio(ratio float64) Option {
	return func(en *ElasticNet) {
		en.l1Ratio = ratio
	}
}

// WithMaxIter sets the maximum number of coordinate descent sweeps.
func WithMaxIter(n int) Option {
	return func(en *ElasticNet) {
		en.maxIter = n
	}
}

// WithTol sets the tolerance for the optimization
func WithTol(tol float64) Option {
	return func(en *ElasticNet) {
		en.tol = tol
	}
}

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(en *ElasticNet) {
		en.fitIntercept = fit
	}
}
