package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := Version
	Version = v
	t.Cleanup(func() { Version = old })
}

func TestGet_Dev(t *testing.T) {
	withVersion(t, "dev")

	info := Get()
	assert.Equal(t, "dev", info.Version)
	assert.False(t, info.Release)
	assert.Zero(t, info.Major)
}

func TestGet_Release(t *testing.T) {
	withVersion(t, "v1.4.2")

	info := Get()
	assert.True(t, info.Release)
	assert.Equal(t, int64(1), info.Major)
	assert.Equal(t, int64(4), info.Minor)
	assert.Equal(t, int64(2), info.Patch)
}

func TestGet_Prerelease(t *testing.T) {
	withVersion(t, "2.0.0-rc.1")

	info := Get()
	assert.False(t, info.Release)
	assert.Equal(t, int64(2), info.Major)
}

func TestString(t *testing.T) {
	withVersion(t, "1.0.0")
	assert.Contains(t, String(), "connmon version 1.0.0")
}
