// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/wikigraph/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/wikigraph/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/wikigraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/wikigraph
//
// Binaries built with `go install` carry no ldflags; their module version
// and VCS stamp are read from the embedded build info instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Repository is the project home, quoted in the HTTP User-Agent.
const Repository = "https://github.com/matzehuels/wikigraph"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

var fillOnce sync.Once

// fill replaces unset ldflags values with the embedded build info.
func fill() {
	fillOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && Commit == "none":
				Commit = s.Value
			case s.Key == "vcs.time" && Date == "unknown":
				Date = s.Value
			}
		}
	})
}

// String returns the formatted build information.
func String() string {
	fill()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	fill()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies this build to the Wikimedia API, as its etiquette
// requires: "wikigraph/v1.2.3 (https://github.com/matzehuels/wikigraph)".
func UserAgent() string {
	fill()
	return fmt.Sprintf("wikigraph/%s (%s)", Version, Repository)
}
