package forecast

import (
	"fmt"
	"strings"
)

// Method names a forecasting strategy.
type Method string

const (
	MethodLinear               Method = "linear"
	MethodPolynomial           Method = "polynomial"
	MethodExponentialSmoothing Method = "exponential_smoothing"
	MethodGradientBoosting     Method = "gradient_boosting"
	MethodRandomForest         Method = "random_forest"
	MethodXGBoost              Method = "xgboost_ensemble"
	// MethodGrowthOverride is reported when a fixed growth rate replaced the fit.
	MethodGrowthOverride Method = "growth_override"
)

// Methods lists the methods that can be requested.
var Methods = []Method{
	MethodLinear,
	MethodPolynomial,
	MethodExponentialSmoothing,
	MethodGradientBoosting,
	MethodRandomForest,
	MethodXGBoost,
}

// ParseMethod validates a method name. Dashes are accepted for underscores.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, k := range Methods {
		if k == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown forecast method %q", s)
}

func (m Method) String() string { return string(m) }
