package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flightmap/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flightmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
grpc: feed.example.net:443
zoom: 10
satellite: true
sheet:
  initial_height: 0.4
  anchors: [0.25, 0.5, 1.0]
  settle_duration: 250ms
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "feed.example.net:443", cfg.GRPCAddr)
	assert.Equal(t, 10, cfg.Zoom)
	assert.True(t, cfg.Satellite)
	assert.Equal(t, "tiles", cfg.CacheDir, "unset keys keep their defaults")

	assert.Equal(t, 0.4, cfg.Sheet.InitialHeight)
	assert.Equal(t, []float64{0.25, 0.5, 1.0}, cfg.Sheet.Anchors)
	assert.Equal(t, 250*time.Millisecond, cfg.Sheet.SettleDuration)
	assert.Equal(t, 300*time.Millisecond, cfg.Sheet.ExitDuration)
}

func TestLoadConfigRejectsBadAnchors(t *testing.T) {
	path := writeConfig(t, `
sheet:
  anchors: [0.8, 0.4]
`)
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, sheet.ErrInvalidConfig)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "zoom: [")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsZoom(t *testing.T) {
	path := writeConfig(t, "zoom: 40\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "zoom")
}
