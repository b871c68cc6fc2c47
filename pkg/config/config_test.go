package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene.CanvasSize != 800 {
		t.Errorf("Expected canvas size 800, got %d", cfg.Scene.CanvasSize)
	}
	if cfg.Scene.Margin != 10 {
		t.Errorf("Expected margin 10, got %f", cfg.Scene.Margin)
	}
	if cfg.Input.ParsePolicy != "abort" {
		t.Errorf("Expected abort policy by default, got %s", cfg.Input.ParsePolicy)
	}
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Scene, cfg.Scene)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "nodulevis.yaml")

	cfg := DefaultConfig()
	cfg.Scene.CanvasSize = 512
	cfg.Input.ParsePolicy = "skip"
	cfg.Render.Colors.Hull = "#123456"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 512, loaded.Scene.CanvasSize)
	require.Equal(t, "skip", loaded.Input.ParsePolicy)
	require.Equal(t, "#123456", loaded.Render.Colors.Hull)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  margin: 4\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 4.0, cfg.Scene.Margin)
	require.Equal(t, 800, cfg.Scene.CanvasSize)
	require.True(t, cfg.Render.Enabled)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene: [\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.ParsePolicy = "ignore"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Scene.Margin = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Render.Workers = 0
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1, cfg.Render.Workers)
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvDiameters+"=/data/d.txt\n"), 0644))

	t.Setenv(EnvRecords, "/data/r.json")
	t.Setenv(EnvParsePolicy, "skip")
	// godotenv.Load does not override variables that are already set
	t.Setenv(EnvDiameters, "")
	os.Unsetenv(EnvDiameters)

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(envFile, filepath.Join(dir, "absent.env")))

	require.Equal(t, "/data/r.json", cfg.Input.Records)
	require.Equal(t, "/data/d.txt", cfg.Input.Diameters)
	require.Equal(t, "skip", cfg.Input.ParsePolicy)
	require.Equal(t, "scenes", cfg.Render.OutputDir)
}

func TestApplyEnvMalformedFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(envFile, []byte("NODULEVIS-RECORDS=/data/r.json\n"), 0644))

	err := DefaultConfig().ApplyEnv(envFile)
	require.Error(t, err)
	require.Contains(t, err.Error(), envFile)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodulevis.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# nodulevis configuration"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	// A second call must not clobber the file
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  margin: 3\n"), 0644))
	require.ErrorIs(t, CreateDefaultConfigFile(path), os.ErrExist)
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3.0, cfg.Scene.Margin)
}
