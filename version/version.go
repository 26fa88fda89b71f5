package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes a build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get merges the link-time values with the binary's build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	return info
}

// Short renders the version with its commit, e.g. "1.2.0-3f2a9c1".
func (i Info) Short() string {
	if i.Commit == "none" {
		return i.Version
	}
	s := fmt.Sprintf("%s-%s", i.Version, i.Commit)
	if i.Dirty {
		s += "-dirty"
	}
	return s
}
