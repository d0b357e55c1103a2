package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
api:
  host: 0.0.0.0
  port: 9100
log:
  level: debug
tracker:
  debounce: 5s
  message: "Offline"
source:
  kind: poll
  poll_interval: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, 9100, cfg.API.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Tracker.Debounce))
	assert.Equal(t, "Offline", cfg.Tracker.Message)
	assert.Equal(t, "poll", cfg.Source.Kind)
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.Source.PollInterval))
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "tracker:\n  debounce: soon\n"))
	assert.ErrorContains(t, err, "invalid duration")

	_, err = Load(writeFile(t, "tracker:\n  debounce: -1s\n"))
	assert.ErrorContains(t, err, "negative duration")

	_, err = Load(writeFile(t, "api: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestDuration_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(TrackerConfig{Debounce: Duration(3 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, "debounce: 3s\n", string(out))
}
