// Package version reports build metadata for the remote-storage binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	// Unknown is used when build metadata is not provided.
	Unknown = "unknown"
	// DevelopmentVersion is the default version in local builds.
	DevelopmentVersion = "dev"
)

var (
	// AppVersion is intended to be overridden at build time:
	// go build -ldflags="-X github.com/nimburion/remotestore/pkg/version.AppVersion=v1.2.3"
	AppVersion = DevelopmentVersion

	// GitCommit is intended to be overridden at build time.
	GitCommit = Unknown

	// BuildTime is intended to be overridden at build time (RFC3339 recommended).
	BuildTime = Unknown
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info contains version metadata for the binary.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Current returns the build metadata. Values not injected through ldflags
// fall back to the VCS stamps the Go toolchain embeds.
func Current(serviceName string) Info {
	info := Info{
		Service:   normalizeOrDefault(serviceName, Unknown),
		Version:   normalizeOrDefault(AppVersion, DevelopmentVersion),
		Commit:    normalizeOrDefault(GitCommit, Unknown),
		BuildTime: normalizeOrDefault(BuildTime, Unknown),
		GoVersion: runtime.Version(),
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == Unknown && setting.Value != "" {
				info.Commit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == Unknown && setting.Value != "" {
				info.BuildTime = setting.Value
			}
		}
	}
	return info
}

// Fields returns the build metadata as logger key-value pairs. The service
// name is left out; the logger stamps it on every entry.
func (i Info) Fields() []any {
	return []any{"version", i.Version, "commit", i.Commit, "build_time", i.BuildTime, "go_version", i.GoVersion}
}

// String returns a log-friendly representation.
func (i Info) String() string {
	return fmt.Sprintf("%s@%s (commit=%s, build_time=%s, go=%s)", i.Service, i.Version, i.Commit, i.BuildTime, i.GoVersion)
}

func normalizeOrDefault(v, fallback string) string {
	norm := strings.TrimSpace(v)
	if norm == "" {
		return fallback
	}
	return norm
}
