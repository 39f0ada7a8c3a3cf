// Package version exposes build metadata injected with -ldflags.
package version

import "runtime"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line printed by `rehearse version`.
func String() string {
	return "rehearse " + Version + " (commit=" + Commit + ", date=" + Date + ", go=" + runtime.Version() + ")"
}

// UserAgent identifies this build to the interview service.
func UserAgent() string {
	return "rehearse/" + Version
}
