// Package config provides configuration loading and management for nodulevis.
// It handles loading configuration from YAML files, environment overrides
// from a .env file, and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nodulevis/pkg/diameter"
	"nodulevis/pkg/scene"
)

// Environment variables read by ApplyEnv.
const (
	EnvRecords     = "NODULEVIS_RECORDS"
	EnvDiameters   = "NODULEVIS_DIAMETERS"
	EnvOutputDir   = "NODULEVIS_OUTPUT_DIR"
	EnvParsePolicy = "NODULEVIS_PARSE_POLICY"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input file locations
	Input struct {
		// Records is the JSON nodule record file
		Records string `yaml:"records"`

		// Diameters is the computed diameter text file
		Diameters string `yaml:"diameters"`

		// ParsePolicy is "abort" or "skip" for malformed diameter lines
		ParsePolicy string `yaml:"parsePolicy"`
	} `yaml:"input"`

	// Scene normalization parameters
	Scene struct {
		// CanvasSize is the side of the square drawing area in pixels
		CanvasSize int `yaml:"canvasSize"`

		// Margin is the padding around the hull bounds in source units
		Margin float64 `yaml:"margin"`
	} `yaml:"scene"`

	// Render parameters
	Render struct {
		// Enabled controls whether PNG files are written
		Enabled bool `yaml:"enabled"`

		// OutputDir receives one PNG per scene
		OutputDir string `yaml:"outputDir"`

		// Workers is the number of scenes rendered concurrently
		Workers int `yaml:"workers"`

		// Ticks is the number of labeled ticks per axis
		Ticks int `yaml:"ticks"`

		// LineWidth is the stroke width in pixels
		LineWidth int `yaml:"lineWidth"`

		// Colors are hex strings such as "#00ff00"
		Colors struct {
			Background    string `yaml:"background"`
			Hull          string `yaml:"hull"`
			LongDiameter  string `yaml:"longDiameter"`
			ShortDiameter string `yaml:"shortDiameter"`
			LongAxis      string `yaml:"longAxis"`
			ShortAxis     string `yaml:"shortAxis"`
			Text          string `yaml:"text"`
			Grid          string `yaml:"grid"`
		} `yaml:"colors"`
	} `yaml:"render"`

	// Output parameters
	Output struct {
		// SceneExport, when set, receives all scenes as msgpack
		SceneExport string `yaml:"sceneExport"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Input.ParsePolicy = string(diameter.Abort)

	cfg.Scene.CanvasSize = scene.DefaultCanvasSize
	cfg.Scene.Margin = scene.DefaultMargin

	cfg.Render.Enabled = true
	cfg.Render.OutputDir = "scenes"
	cfg.Render.Workers = runtime.NumCPU()
	cfg.Render.Ticks = 10
	cfg.Render.LineWidth = 2

	// Hull green, computed diameters blue/red, reference axes yellow/magenta
	cfg.Render.Colors.Background = "#000000"
	cfg.Render.Colors.Hull = "#00ff00"
	cfg.Render.Colors.LongDiameter = "#0000ff"
	cfg.Render.Colors.ShortDiameter = "#ff0000"
	cfg.Render.Colors.LongAxis = "#ffff00"
	cfg.Render.Colors.ShortAxis = "#ff00ff"
	cfg.Render.Colors.Text = "#ffffff"
	cfg.Render.Colors.Grid = "#808080"

	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// ApplyEnv loads envFiles (".env" when none are given) if present and
// overrides input and output locations from the environment. Missing files
// are ignored; a file that exists but does not parse is an error.
func (c *Config) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("error loading env file %s: %w", f, err)
		}
	}

	if v := os.Getenv(EnvRecords); v != "" {
		c.Input.Records = v
	}
	if v := os.Getenv(EnvDiameters); v != "" {
		c.Input.Diameters = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Render.OutputDir = v
	}
	if v := os.Getenv(EnvParsePolicy); v != "" {
		c.Input.ParsePolicy = v
	}
	return nil
}

// Validate checks values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if _, err := diameter.ParsePolicyFromString(c.Input.ParsePolicy); err != nil {
		return err
	}
	if c.Scene.CanvasSize <= 0 {
		return fmt.Errorf("scene.canvasSize must be positive, got %d", c.Scene.CanvasSize)
	}
	if c.Scene.Margin <= 0 {
		return fmt.Errorf("scene.margin must be positive, got %g", c.Scene.Margin)
	}
	if c.Render.Workers < 1 {
		c.Render.Workers = 1
	}
	if c.Render.LineWidth < 1 {
		c.Render.LineWidth = 1
	}
	return nil
}

// fileHeader starts every file written by SaveConfig.
const fileHeader = "# nodulevis configuration; environment variables NODULEVIS_* and flags override these values\n"

// SaveConfig writes cfg as YAML to configPath, creating its directory.
func SaveConfig(cfg *Config, configPath string) error {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, append([]byte(fileHeader), body...), 0644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	return nil
}

// CreateDefaultConfigFile writes DefaultConfig to configPath. An existing
// file is left untouched and reported with an error wrapping os.ErrExist.
func CreateDefaultConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file %s: %w", configPath, os.ErrExist)
	}
	return SaveConfig(DefaultConfig(), configPath)
}
