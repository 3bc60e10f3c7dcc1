// Package version holds build metadata, overridable with -ldflags -X.
package version

import "fmt"

var (
	// Version is the semantic version.
	Version = "0.3.0"

	// BuildTime is the UTC time when the binary was built.
	BuildTime = "unknown"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String(name string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", name, Version, GitCommit, BuildTime)
}
