package version

import (
	"fmt"

	"github.com/Masterminds/semver"
)

var (
	// Version contains the current version of connmon
	Version = "dev"

	// CommitHash contains the current git commit hash
	CommitHash = "unknown"

	// BuildTime contains the time of build
	BuildTime = "unknown"
)

// Info describes the running build.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit"`
	BuildTime  string `json:"buildTime"`
	Major      int64  `json:"major,omitempty"`
	Minor      int64  `json:"minor,omitempty"`
	Patch      int64  `json:"patch,omitempty"`
	Release    bool   `json:"release"`
}

// Get returns the build info. Release is false for development builds and
// pre-release versions.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
	}
	if v, err := semver.NewVersion(Version); err == nil {
		info.Major = v.Major()
		info.Minor = v.Minor()
		info.Patch = v.Patch()
		info.Release = v.Prerelease() == ""
	}
	return info
}

func String() string {
	return fmt.Sprintf("connmon version %s (commit: %s, built at: %s)", Version, CommitHash, BuildTime)
}
