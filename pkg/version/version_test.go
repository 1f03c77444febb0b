package version

import (
	"runtime"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, v, commit, built string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, GitCommit, BuildTime = v, commit, built
}

func TestString(t *testing.T) {
	withBuildInfo(t, "1.2.3", "abc123def", "2024-01-15T10:30:00Z")

	result := String()
	for _, want := range []string{"graphqa", "1.2.3", "abc123def", "2024-01-15T10:30:00Z", runtime.Version()} {
		if !strings.Contains(result, want) {
			t.Errorf("String() should contain %q, got: %s", want, result)
		}
	}
}

func TestUserAgent(t *testing.T) {
	withBuildInfo(t, "0.4.0", "unknown", "unknown")

	if got := UserAgent(); got != "graphqa/0.4.0" {
		t.Errorf("UserAgent() = %q, want %q", got, "graphqa/0.4.0")
	}
}

func TestInfo(t *testing.T) {
	withBuildInfo(t, "dev", "unknown", "unknown")

	info := Info()
	for _, key := range []string{"version", "commit", "buildTime", "goVersion", "platform"} {
		if _, ok := info[key]; !ok {
			t.Errorf("Info() missing key %q", key)
		}
	}
	if info["platform"] != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Info()[platform] = %q", info["platform"])
	}
}
