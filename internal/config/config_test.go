package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicewriter-go/internal/config"
)

func TestLoadFromReader_EmptyUsesDefaults(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Progress.Sync)
	assert.Equal(t, "ffplay", cfg.Audio.Command)
}

func TestLoadFromReader_Overrides(t *testing.T) {
	yaml := `
api:
  base_url: https://dictation.example.com/api/v1
  timeout: 3s
user:
  id: learner-7
audio:
  command: mpv
  args: ["--no-video"]
progress:
  sync: false
log:
  level: debug
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "https://dictation.example.com/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "learner-7", cfg.User.ID)
	assert.Equal(t, "mpv", cfg.Audio.Command)
	assert.Equal(t, []string{"--no-video"}, cfg.Audio.Args)
	assert.False(t, cfg.Progress.Sync)
	assert.Equal(t, config.LogDebug, cfg.Log.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, "voicewriter.db", cfg.Journal.Path)
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader("api:\n  base: nope\n"))
	assert.Error(t, err)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	yaml := `
api:
  base_url: not-a-url
  timeout: 0s
log:
  level: loud
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "api.base_url")
	assert.Contains(t, msg, "api.timeout")
	assert.Contains(t, msg, "log.level")
}

func TestLoad_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://file.example/api/v1\n"), 0o600))

	t.Setenv(config.EnvAPIURL, "http://env.example/api/v1")
	t.Setenv(config.EnvUserID, "env-user")
	t.Setenv(config.EnvLogLevel, "WARN")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "env-user", cfg.User.ID)
	assert.Equal(t, config.LogWarn, cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
