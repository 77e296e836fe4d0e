// Package version reports the camlight build version.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// These variables can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/camlight/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/camlight/internal/version.Commit=abc123"
//
// If not set, they are populated from VCS build info, or fall back to
// "dev" with a timestamp.
var (
	Version = ""
	Commit  = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		info = nil
	}
	Version, Commit = resolve(Version, Commit, info, time.Now())
}

// resolve fills in whichever of version and commit is empty
func resolve(version, commit string, info *debug.BuildInfo, now time.Time) (string, string) {
	if info != nil && (version == "" || commit == "") {
		var revision, modified, vcsTime string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			case "vcs.time":
				vcsTime = setting.Value
			}
		}

		if commit == "" && revision != "" {
			commit = revision
			if len(commit) > 7 {
				commit = commit[:7]
			}
			if modified == "true" {
				commit += "-dirty"
			}
		}

		// Build info carries no tags, so a VCS build gets a dated dev version
		if version == "" && vcsTime != "" {
			if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
				version = "dev-" + t.Format("20060102")
			}
		}
	}

	if version == "" {
		version = "dev-" + now.Format("20060102-150405")
	}
	if commit == "" {
		commit = "unknown"
	}
	return version, commit
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent is sent with every request to a camera
func UserAgent() string {
	return "camlight/" + Version
}
