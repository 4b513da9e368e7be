// Package version holds build information, set through -ldflags.
package version

import "fmt"

var (
	// Version is the release tag, e.g. "v0.3.1".
	Version = "v0.1.0"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build info for `av version`.
func String() string {
	return fmt.Sprintf("av %s (commit %s, built %s)", Version, Commit, Date)
}
