// Package learn holds the regressors used by the density models and the
// tree-based series forecasters. Gradient boosting wraps the scigo LightGBM
// trainer; the random forest bags regression trees grown here from gradient
// and hessian statistics. All randomness is driven by an explicit seed so
// that training is reproducible.
package learn
