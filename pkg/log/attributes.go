// Package log defines standard attribute keys for the evaluation pipeline.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that runs can be filtered and compared from their logs.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model family or estimator type.
	// Examples: "ElasticNet", "RandomForestRegressor"
	ModelNameKey = "model.name"

	// RunIDKey identifies one invocation of the pipeline.
	RunIDKey = "run.id"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "dataset", "model_selection", "report"
	ComponentKey = "ml.component"

	// PhaseKey indicates the pipeline stage.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// PathKey is the file a table was read from or an artifact written to.
	PathKey = "data.path"
)

// Evaluation
const (
	// FoldKey is the index of an outer or inner cross-validation fold.
	FoldKey = "cv.fold"

	// NFoldsKey is the number of folds of a splitter.
	NFoldsKey = "cv.n_folds"

	// CandidatesKey is the number of hyperparameter combinations in a grid.
	CandidatesKey = "cv.candidates"

	// BestParamsKey holds the parameters selected by a grid search.
	BestParamsKey = "cv.best_params"

	// BestScoreKey holds the best mean inner-CV score.
	BestScoreKey = "cv.best_score"

	// HeldOutKey and BaselineKey carry the two sides of a metric comparison.
	HeldOutKey  = "metrics.held_out"
	BaselineKey = "metrics.baseline"

	// VarianceExplainedKey records the variance explained by held-out predictions.
	VarianceExplainedKey = "metrics.variance_explained"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkersKey is the number of concurrent workers used.
	WorkersKey = "perf.workers"
)

// Error and Configuration Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by ZerologLogger.Error.
	StacktraceKey = "error.stacktrace"

	// WarningKey carries a structured warning object.
	WarningKey = "warning"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseLoad     = "load"
	PhaseEvaluate = "evaluate"
	PhaseRefit    = "refit"
	PhaseRank     = "rank"
	PhaseWrite    = "write"
)
