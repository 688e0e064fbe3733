// Package version provides version information of the running binary.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Version records version information.
type Version struct {
	Version string    `json:"version"`
	Commit  string    `json:"commit"`
	Date    time.Time `json:"date"`
	Dirty   bool      `json:"dirty"`
}

func (v Version) String() string {
	return v.Version
}

var development = Version{
	Version: "development",
	Commit:  "unknown",
	Date:    time.Now().UTC().Truncate(time.Second),
	Dirty:   true,
}

// V contains version information of the running binary.
var V = fromBuildInfo(debug.ReadBuildInfo())

// fromBuildInfo prefers the module version recorded by "go install module@version", then VCS stamping.
func fromBuildInfo(bi *debug.BuildInfo, ok bool) Version {
	v := development
	if !ok {
		return v
	}
	if mv := bi.Main.Version; mv != "" && mv != "(devel)" {
		v.Version, v.Dirty = mv, false
	}

	var revision, modified string
	var date time.Time
	isGit := false
	for _, kv := range bi.Settings {
		switch kv.Key {
		case "vcs":
			isGit = kv.Value == "git"
		case "vcs.revision":
			revision = kv.Value
		case "vcs.modified":
			modified = kv.Value
		case "vcs.time":
			date, _ = time.Parse(time.RFC3339, kv.Value)
		}
	}
	if !isGit || len(revision) != 40 || date.IsZero() {
		return v
	}

	v.Commit, v.Date, v.Dirty = revision, date, modified == "true"
	if v.Version == development.Version {
		v.Version = fmt.Sprintf("v0.0.0-%s-%s", date.Format("20060102150405"), revision[:12])
		if v.Dirty {
			v.Version += "-dirty"
		}
	}
	return v
}
