//go:build !nosmoothing

package app

// Links the Holt smoother. Build with -tags nosmoothing to leave it out.
import _ "github.com/kilianp07/popcast/infra/smoothing"
