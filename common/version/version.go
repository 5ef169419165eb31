// Package version carries build metadata stamped in via -ldflags.
package version

var (
	// Version is the semantic release version.
	Version = "v0.0.0-dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Info renders the version line shown at startup and on /healthz.
func Info() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}
