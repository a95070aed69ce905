// Package buildinfo reports version data stamped in at link time:
//
//	go build -ldflags "-X github.com/growkeeper/growkeeper/internal/buildinfo.Version=v1.2.0 \
//	    -X github.com/growkeeper/growkeeper/internal/buildinfo.Date=2024-03-01"
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

var (
	Version = ""
	Date    = ""
	Commit  = ""
)

const na = "N/A"

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Data returns version, build date and commit, falling back to the module
// and VCS data recorded by the Go toolchain, then to "N/A".
func Data() (version, date, commit string) {
	version, date, commit = Version, Date, Commit

	if info, ok := readBuildInfo(); ok {
		if version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if date == "" {
					date = s.Value
				}
			}
		}
	}

	return orNA(version), orNA(date), orNA(commit)
}

func PrintBuildData(w io.Writer) {
	version, date, commit := Data()
	fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", version, date, commit)
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}
