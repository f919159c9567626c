// Package version exposes build metadata injected via -ldflags.
package version

import "fmt"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/rshade/regdash/pkg/version.version=v0.3.0"
//
//nolint:gochecknoglobals // Link-time injected values.
var (
	version = "0.0.0-dev"
	commit  = "unknown"
	date    = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return date
}

// String returns a one-line summary suitable for --version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}
