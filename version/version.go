package version

import "runtime"

// Version info injected via ldflags at build time
var (
	// Version is set via -ldflags "-X saasanalytics/version.Version=x.x.x"
	Version = "0.115.0"

	// CommitHash is set via -ldflags "-X saasanalytics/version.CommitHash=xxx"
	CommitHash = "unknown"

	// BuildTime is set via -ldflags "-X saasanalytics/version.BuildTime=xxx"
	BuildTime = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version including the short commit hash
func GetFullVersion() string {
	if CommitHash == "unknown" || CommitHash == "" {
		return Version
	}
	short := CommitHash
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + " (" + short + ")"
}

// GetBuildInfo returns build metadata
func GetBuildInfo() string {
	return "SaaS Analytics Assistant\nVersion: " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime + "\nGo: " + runtime.Version()
}
