// Package version holds build-time version metadata, set via ldflags:
//
//	go build -ldflags "-X github.com/yanizio/serve/internal/version.Version=v1.2.0 \
//	                   -X github.com/yanizio/serve/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

// Version is the release tag. Defaults to "dev" when not set via ldflags.
var Version = "dev"

// Commit is the short commit hash of the build. Optional.
var Commit = ""

// String returns a single-line version banner suitable for --version output.
func String() string {
	if Commit == "" {
		return "serve " + Version
	}
	return "serve " + Version + " (" + Commit + ")"
}
