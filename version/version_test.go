package version

import (
	"strings"
	"testing"
)

func TestGetFullVersion(t *testing.T) {
	origVersion, origCommit := Version, CommitHash
	t.Cleanup(func() { Version, CommitHash = origVersion, origCommit })

	Version = "1.2.3"

	CommitHash = "unknown"
	if got := GetFullVersion(); got != "1.2.3" {
		t.Fatalf("expected bare version, got %q", got)
	}

	CommitHash = "abc"
	if got := GetFullVersion(); got != "1.2.3 (abc)" {
		t.Fatalf("expected short hash kept as is, got %q", got)
	}

	CommitHash = "0123456789abcdef"
	if got := GetFullVersion(); got != "1.2.3 (0123456)" {
		t.Fatalf("expected hash truncated to 7 chars, got %q", got)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	for _, want := range []string{"Version: ", "Commit: ", "Build Time: ", "Go: "} {
		if !strings.Contains(info, want) {
			t.Fatalf("expected build info to contain %q, got %q", want, info)
		}
	}
}
