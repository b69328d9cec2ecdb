//go:build !noxgboost

package app

// Links the regularized booster. Build with -tags noxgboost to leave it out.
import _ "github.com/kilianp07/popcast/infra/boosting"
