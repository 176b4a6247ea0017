package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuild(t *testing.T, version, commit, date string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origDate, origRead := Version, Commit, Date, readBuildInfo
	t.Cleanup(func() {
		Version, Commit, Date, readBuildInfo = origVersion, origCommit, origDate, origRead
	})
	Version, Commit, Date = version, commit, date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetInfoFromLdflags(t *testing.T) {
	stubBuild(t, "1.4.0", "abc123def456", "2024-03-01T12:00:00Z", &debug.BuildInfo{
		Main:     debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffff"}},
	})

	info := GetInfo()
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, "abc123def456", info.Commit)
	assert.Equal(t, "2024-03-01T12:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestGetInfoFromBuildInfo(t *testing.T) {
	stubBuild(t, "dev", "unknown", "unknown", &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-02-02T08:00:00Z"},
		},
	})

	info := GetInfo()
	assert.Equal(t, "v0.3.1", info.Version)
	assert.Equal(t, "0123456789abcdef", info.Commit)
	assert.Equal(t, "2024-02-02T08:00:00Z", info.Date)
}

func TestGetInfoDevelBuild(t *testing.T) {
	stubBuild(t, "dev", "unknown", "unknown", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "dev", GetInfo().Version)

	stubBuild(t, "dev", "unknown", "unknown", nil)
	assert.Equal(t, "unknown", GetInfo().Commit)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "1.4.0",
		Commit:    "abc123def456",
		Date:      "2024-03-01",
		GoVersion: "go1.24.6",
		Platform:  "linux/amd64",
	}
	assert.Equal(t, "gsms 1.4.0 (abc123de) built 2024-03-01 with go1.24.6 for linux/amd64", info.String())
	assert.Equal(t, "1.4.0", info.Short())

	info.Commit = "abc"
	assert.Contains(t, info.String(), "(abc)")
}
