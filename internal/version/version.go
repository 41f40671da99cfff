// Package version reports build metadata set with -ldflags, falling back to
// the module build info for go install builds.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/ganot/entreate/internal/version.Version=v1.0.0".
var (
	Version = "dev"
	Commit  = ""
)

// String returns the version, preferring the linked-in value.
func String() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// Revision returns the VCS commit the binary was built from, if known.
func Revision() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

// Full returns the version with a short commit suffix when one is known.
func Full() string {
	rev := Revision()
	if len(rev) > 7 {
		return fmt.Sprintf("%s (%s)", String(), rev[:7])
	}
	return String()
}
