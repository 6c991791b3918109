package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmsg/wabridge/pkg/types"
)

func TestConfigDefaults(t *testing.T) {
	cm, err := NewConfigManager[types.AppConfig]()
	require.NoError(t, err)

	cfg := cm.GetConfig()
	assert.Equal(t, 1994, cfg.Gateway.HTTP.Port)
	assert.Equal(t, 5, cfg.Providers.Gmail.MaxResults)
	assert.Equal(t, 50, cfg.Providers.Calendar.MaxResults)
	assert.Equal(t, "primary", cfg.Providers.Calendar.CalendarID)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	override := []byte(`
gateway:
  http:
    port: 8080
providers:
  gmail:
    maxResults: 20
`)
	require.NoError(t, os.WriteFile(path, override, 0o644))
	t.Setenv("CONFIG_PATH", path)

	cm, err := NewConfigManager[types.AppConfig]()
	require.NoError(t, err)

	cfg := cm.GetConfig()
	assert.Equal(t, 8080, cfg.Gateway.HTTP.Port)
	assert.Equal(t, 20, cfg.Providers.Gmail.MaxResults)
	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.Providers.Calendar.MaxResults)
}

func TestConfigUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := NewConfigManager[types.AppConfig]()
	assert.Error(t, err)
}

func TestGenerateRandomID(t *testing.T) {
	a := GenerateRandomID(16)
	b := GenerateRandomID(16)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestGenerateStateToken(t *testing.T) {
	token := GenerateStateToken()
	assert.Len(t, token, 32)
	assert.NotEqual(t, token, GenerateStateToken())
}
