package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2026-01-01T12:00:00Z"

	info := GetInfo()
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "abc123def456", info.Commit)
	assert.Equal(t, "2026-01-01T12:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.2"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
		},
	}

	t.Run("unstamped build takes build info", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		fillFromBuildInfo(&info, bi)
		assert.Equal(t, Info{Version: "v0.4.2", Commit: "0123456789abcdef", Date: "2026-03-04T05:06:07Z"}, info)
	})

	t.Run("ldflags win", func(t *testing.T) {
		info := Info{Version: "1.0.0", Commit: "feedface", Date: "2026-01-01"}
		fillFromBuildInfo(&info, bi)
		assert.Equal(t, Info{Version: "1.0.0", Commit: "feedface", Date: "2026-01-01"}, info)
	})

	t.Run("devel main module", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		fillFromBuildInfo(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		assert.Equal(t, "dev", info.Version)
	})
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "long commit is truncated",
			info: Info{Version: "1.0.0", Commit: "abc123def456", Date: "2026-01-01", GoVersion: "go1.24.6", Platform: "linux/amd64"},
			want: "taskplan 1.0.0 (abc123de) built 2026-01-01 with go1.24.6 for linux/amd64",
		},
		{
			name: "short commit",
			info: Info{Version: "1.0.0", Commit: "abc123", Date: "2026-01-01", GoVersion: "go1.24.6", Platform: "darwin/arm64"},
			want: "taskplan 1.0.0 (abc123) built 2026-01-01 with go1.24.6 for darwin/arm64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestInfoShort(t *testing.T) {
	assert.Equal(t, "1.0.0-rc1", Info{Version: "1.0.0-rc1"}.Short())
}
