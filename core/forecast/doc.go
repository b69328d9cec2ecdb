// Package forecast turns a yearly series into a forecast for a number of
// years ahead.
//
// Every method sits in an explicit fallback chain. The Dispatcher walks the
// chain of the requested method and uses the first step whose capability is
// enabled, whose minimum history is met and whose fit succeeds:
//
//	exponential_smoothing -> polynomial(2) -> linear
//	xgboost_ensemble      -> gradient_boosting -> linear
//	gradient_boosting     -> linear
//	random_forest         -> linear
//	polynomial            -> linear
//
// Each skipped step records a warning naming the requested and the substituted
// method. Only exhausting the chain is reported to the caller, as a
// *ForecastFailure.
package forecast
