// Package version reports build information for typeahead.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings and user agents.
const Name = "typeahead"

// Build information, set via ldflags:
//
//	-X github.com/Aman-CERP/typeahead/pkg/version.Version=$(VERSION)
//	-X github.com/Aman-CERP/typeahead/pkg/version.Commit=$(COMMIT)
//	-X github.com/Aman-CERP/typeahead/pkg/version.Date=$(DATE)
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"

	// GoVersion is the toolchain that built the binary.
	GoVersion = runtime.Version()
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a one-line version string with all build info.
func String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, Commit, Date, GoVersion)
}

// Short returns just the version.
func Short() string {
	return Version
}

// UserAgent returns the HTTP User-Agent sent by the remote backend.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s)", Name, Version, runtime.GOOS, runtime.GOARCH)
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
