package portal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "assets/bakedPortal.glb", cfg.ModelPath)
	assert.Equal(t, "assets/bakedCarl.jpg", cfg.TexturePath)
	assert.Equal(t, DefaultDecoderPath, cfg.DecoderPath)
	assert.Equal(t, DefaultFireflyCount, cfg.FireflyCount)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 640
model: scenes/other.glb
fireflies: 12
seed: 7
debug: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep defaults")
	assert.Equal(t, "Portal", cfg.Window.Title)
	assert.Equal(t, "scenes/other.glb", cfg.ModelPath)
	assert.Equal(t, "assets/bakedCarl.jpg", cfg.TexturePath)
	assert.Equal(t, 12, cfg.FireflyCount)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.True(t, cfg.Debug)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "window: [1, 2"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "window:\n  width: 0\n"))
	assert.ErrorContains(t, err, "window size")

	_, err = LoadConfig(writeConfig(t, "fireflies: -1\n"))
	assert.ErrorContains(t, err, "firefly count")

	_, err = LoadConfig(writeConfig(t, "model: \"\"\n"))
	assert.ErrorContains(t, err, "model path")
}
