package version_test

import (
	"runtime/debug"
	"testing"

	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/core/version"
)

var makeAR = testenv.MakeAR

func TestFromBuildInfo(t *testing.T) {
	assert, _ := makeAR(t)
	assert.NotEmpty(version.V.String())

	dev := version.FromBuildInfo(nil, false)
	assert.Equal("development", dev.String())
	assert.True(dev.Dirty)

	vcs := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"},
		{Key: "vcs.time", Value: "2026-10-17T08:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}
	v := version.FromBuildInfo(&debug.BuildInfo{Settings: vcs}, true)
	assert.Equal("v0.0.0-20261017083000-0123456789ab-dirty", v.String())
	assert.Equal("0123456789abcdef0123456789abcdef01234567", v.Commit)
	assert.True(v.Dirty)

	bi := &debug.BuildInfo{Settings: vcs[:2]}
	bi.Main.Version = "v1.2.0"
	v = version.FromBuildInfo(bi, true)
	assert.Equal("v1.2.0", v.String())
	assert.False(v.Dirty)
	assert.Equal(dev.Commit, v.Commit)

	v = version.FromBuildInfo(&debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "short"},
	}}, true)
	assert.Equal(dev, v)
}
