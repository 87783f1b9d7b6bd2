package buildinfo

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// BuildInfo holds all sorts of information about the build of an executable artifact.
type BuildInfo struct {
	Version    string
	CommitHash string
	BuildDate  string
}

// String returns the build info as a string.
func (i BuildInfo) String() string {
	return fmt.Sprintf("version %s (%s) built on %s", i.Version, i.CommitHash, i.BuildDate)
}

// KeyValues returns the build info as structured logging key-value pairs.
func (i BuildInfo) KeyValues() []any {
	return []any{"version", i.Version, "commit", i.CommitHash, "build-date", i.BuildDate}
}

// SemVer parses the version; development builds without a release tag yield nil.
func (i BuildInfo) SemVer() *semver.Version {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return nil
	}
	return v
}
