// Package version reports the pinosh build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/pinosh"

// buildVersion is set via -ldflags "-X pkt.systems/pinosh/internal/version.buildVersion=...".
var buildVersion = ""

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info describes the running binary.
type Info struct {
	Version   string
	Module    string
	Revision  string
	Modified  bool
	GoVersion string
}

func (i Info) String() string {
	s := fmt.Sprintf("%s %s (%s)", i.Module, i.Version, i.GoVersion)
	if i.Revision != "" {
		s += " rev " + i.Revision
	}
	return s
}

// Current returns the version without the dirty suffix.
func Current() string {
	return resolve(false)
}

// CurrentWithDirty returns the version, marked +dirty for modified trees.
func CurrentWithDirty() string {
	return resolve(true)
}

// Get returns the full build description.
func Get() Info {
	info := Info{
		Version:   CurrentWithDirty(),
		Module:    defaultModule,
		GoVersion: runtime.Version(),
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if path := strings.TrimSpace(bi.Main.Path); path != "" {
		info.Module = path
	}
	vcs := vcsSettings(bi)
	info.Revision = shortRevision(vcs.revision)
	info.Modified = vcs.modified
	return info
}

func resolve(includeDirty bool) string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return trimDirty(v, includeDirty)
	}
	if bi, ok := readBuildInfo(); ok {
		if v := strings.TrimSpace(bi.Main.Version); v != "" && v != "(devel)" {
			return trimDirty(v, includeDirty)
		}
		if v := pseudoVersion(bi, includeDirty); v != "" {
			return v
		}
	}
	return "v0.0.0-unknown"
}

func trimDirty(v string, includeDirty bool) string {
	if includeDirty {
		return v
	}
	return strings.TrimSuffix(v, "+dirty")
}

type vcs struct {
	revision string
	time     string
	modified bool
}

func vcsSettings(bi *debug.BuildInfo) vcs {
	var out vcs
	if bi == nil {
		return out
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			out.revision = setting.Value
		case "vcs.time":
			out.time = setting.Value
		case "vcs.modified":
			out.modified = setting.Value == "true"
		}
	}
	return out
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// pseudoVersion builds a Go pseudo-version from VCS stamping.
func pseudoVersion(bi *debug.BuildInfo, includeDirty bool) string {
	v := vcsSettings(bi)
	if v.revision == "" || v.time == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, v.time)
	if err != nil {
		return ""
	}
	out := "v0.0.0-" + parsed.UTC().Format("20060102150405") + "-" + shortRevision(v.revision)
	if v.modified && includeDirty {
		out += "+dirty"
	}
	return out
}
