// Package misc keeps build time properties of the program.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X lessc/misc.version=... -X lessc/misc.gitHash=... -X lessc/misc.buildDate=...".
var (
	version   = "dev"
	gitHash   = ""
	buildDate = ""
)

const appName = "lessc"

func GetAppName() string {
	return appName
}

// GetVersion returns program version, falls back to module information when
// version was not set during build.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}

// GetGitHash returns commit the program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

func GetBuildDate() string {
	if len(buildDate) > 0 {
		return buildDate
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.time" {
				return s.Value
			}
		}
	}
	return "unknown"
}
