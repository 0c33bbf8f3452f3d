package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"flightmap/sheet"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk application configuration. Command line flags
// override whatever the file sets.
type Config struct {
	GRPCAddr      string       `yaml:"grpc"`
	CacheDir      string       `yaml:"cache_dir"`
	TileCacheSize int          `yaml:"tile_cache_size"`
	Width         int          `yaml:"width"`
	Height        int          `yaml:"height"`
	Fullscreen    bool         `yaml:"fullscreen"`
	Lat           float64      `yaml:"lat"`
	Lon           float64      `yaml:"lon"`
	Zoom          int          `yaml:"zoom"`
	Satellite     bool         `yaml:"satellite"`
	LogLevel      string       `yaml:"log_level"`
	LogDir        string       `yaml:"log_dir"`
	Sheet         sheet.Config `yaml:"sheet"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		GRPCAddr:      "localhost:10000",
		CacheDir:      "tiles",
		TileCacheSize: 512,
		Width:         1024,
		Height:        600,
		Lat:           51.4700, // Default: London Heathrow
		Lon:           -0.4543,
		Zoom:          8,
		LogLevel:      "info",
		Sheet:         sheet.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges the rest of the app relies on
func (c Config) Validate() error {
	if c.Zoom < MinZoom || c.Zoom > MaxZoom {
		return fmt.Errorf("zoom %d out of range [%d, %d]", c.Zoom, MinZoom, MaxZoom)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", c.Width, c.Height)
	}
	if c.TileCacheSize <= 0 {
		return fmt.Errorf("tile_cache_size must be positive")
	}
	return c.Sheet.Validate()
}
