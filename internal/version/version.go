// Package version holds build metadata injected at link time via
// -ldflags "-X ...".
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit hash of the build.
	Commit = "unknown"
)
