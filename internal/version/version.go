// Package version reports build information for formwatch
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at link time with -ldflags "-X github.com/iiroan/formwatch/internal/version.version=..."
var (
	version = ""
	commit  = ""
	date    = ""
)

// Info holds version information for a build
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	Dirty     bool      `json:"dirty,omitempty"`
	BuildDate time.Time `json:"build_date,omitempty"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
}

// Get combines link-time values with the module build info.
func Get() Info {
	info := Info{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		info.BuildDate = t
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = setting.Value
				}
			case "vcs.modified":
				info.Dirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildDate.IsZero() {
					if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
						info.BuildDate = t
					}
				}
			}
		}
	}
	return info
}

// Short returns "v1.2.3", or "dev-<rev>" for untagged builds.
func (v Info) Short() string {
	if v.Version != "" {
		return v.Version
	}
	if v.Commit == "" {
		return "dev"
	}
	rev := v.Commit
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if v.Dirty {
		rev += "+dirty"
	}
	return "dev-" + rev
}

// String returns a one-line description for the version command.
func (v Info) String() string {
	s := fmt.Sprintf("formwatch %s (%s, %s)", v.Short(), v.Platform, v.GoVersion)
	if !v.BuildDate.IsZero() {
		s += " built " + v.BuildDate.Format("2006-01-02")
	}
	return s
}
