// Package outcomecv trains regression models that predict a clinical outcome
// from clinical, tumor and blood features of a small patient cohort, and
// reports how much of the outcome they explain.
//
// Evaluation is nested: an outer leave-one-out loop holds out each patient in
// turn while an inner grid search picks hyperparameters on the remaining
// patients only. Held-out error is compared against a baseline that predicts
// the mean of the other patients' outcomes. A final model is then refit on all
// patients and its features are ranked by impurity importance (random forest)
// or by coefficient times feature standard deviation (elastic net).
//
// # Quick Start
//
//	train-model \
//	    --feature_file features.tsv \
//	    --feature_class_file classes.tsv \
//	    --outcome_file outcome.tsv \
//	    --output_prefix out/os-en \
//	    --model en \
//	    --excluded_feature_classes blood
//
// This writes out/os-en-results.json and out/os-en-coefficients.tsv.
//
// The estimators can also be used as a library:
//
//	pipe, _ := pipeline.New(
//	    linear.NewElasticNet(linear.WithMaxIter(100000)),
//	    pipeline.Step{Name: "imputer", Transformer: preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)},
//	)
//	search := model_selection.NewGridSearchCV(pipe, model_selection.ParamGrid{
//	    "estimator__alpha": {0.01, 0.1, 1.0},
//	})
//	preds, err := model_selection.CrossValPredict(ctx, search, X, y, model_selection.NewLeaveOneOut(), -1)
//
// # Packages
//
//   - linear: ElasticNet by coordinate descent
//   - sklearn/tree: CART DecisionTreeRegressor
//   - sklearn/ensemble: RandomForestRegressor
//   - sklearn/pipeline: imputer plus estimator chains with estimator__ parameter routing
//   - sklearn/model_selection: LeaveOneOut, KFold, GridSearchCV, CrossValPredict
//   - preprocessing: median SimpleImputer
//   - metrics: MSE, RMSE, MAE, R², explained variance and the leave-one-out mean baseline
//   - core/model: estimator interfaces and fit state
//   - core/parallel: bounded worker pools
//   - pkg/errors, pkg/log: error types, warnings and zerolog-backed logging
//   - internal/...: the train-model pipeline itself
package outcomecv
