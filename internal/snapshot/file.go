package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lox/bjtrainer/internal/round"
)

// Save writes s to path. Readers see either the previous file or the
// complete new one, never a partial write.
func Save(path string, s round.State) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	return writeAtomic(path, data, 0o644)
}

// Load reads and validates the snapshot at path.
func Load(path string) (round.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return round.State{}, err
	}
	s, err := Decode(data)
	if err != nil {
		return round.State{}, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

func writeAtomic(filename string, data []byte, perm os.FileMode) error {
	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
