// Package buildconfig exposes values stamped in at link time:
//
//	go build -ldflags "-X github.com/Harshitk-cp/wumpus/internal/buildconfig.version=v0.3.0"
package buildconfig

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Version returns the build version
func Version() string {
	return version
}

// Commit returns the git commit hash. Unstamped builds fall back to the VCS
// revision recorded by the toolchain, if any.
func Commit() string {
	if commit != "unknown" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return commit
}

// VersionInfo returns full version information
func VersionInfo() map[string]string {
	return map[string]string{
		"version":    version,
		"commit":     Commit(),
		"built":      date,
		"go_version": runtime.Version(),
	}
}

// String is the one-line form printed by `wumpus version`.
func String() string {
	return fmt.Sprintf("wumpus %s (commit %s, built %s, %s %s/%s)",
		version, Commit(), date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
