package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"nodulevis/pkg/scene"
)

// ExportScenes writes scenes as a msgpack array for external renderers.
func ExportScenes(path string, scenes []scene.Scene) error {
	data, err := msgpack.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("failed to encode scenes: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scene export: %w", err)
	}
	return nil
}

// ImportScenes reads a file written by ExportScenes.
func ImportScenes(path string) ([]scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene export: %w", err)
	}

	var scenes []scene.Scene
	if err := msgpack.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("failed to decode scenes: %w", err)
	}
	return scenes, nil
}
