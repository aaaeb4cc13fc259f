// Package version reports what uqff binary is running.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X github.com/samcharles93/uqff/internal/version.Version=...".
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
}

// Resolve prefers linker-injected values and falls back to the module and
// VCS stamps the Go toolchain embeds.
func Resolve() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}

	if bi, ok := readBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
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
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	s := i.Version + " (" + shortCommit(i.Commit)
	if i.Modified {
		s += ", dirty"
	}
	return s + ")"
}

// Report is the multi-line form printed by "uqff version".
func (i Info) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "version:    %s\n", i.Version)
	if i.Commit != "" {
		fmt.Fprintf(&b, "commit:     %s\n", i.Commit)
	}
	if i.BuildTime != "" {
		fmt.Fprintf(&b, "build time: %s\n", i.BuildTime)
	}
	return b.String()
}

func shortCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}
