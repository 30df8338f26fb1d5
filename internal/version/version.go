// Package version holds build metadata injected with -ldflags -X.
package version

import "fmt"

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build metadata for the About dialog and startup log.
func String() string {
	return fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)
}
