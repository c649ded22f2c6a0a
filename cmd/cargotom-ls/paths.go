package main

import (
	"os"
	"path/filepath"
)

// configDir returns the per-user directory holding the provider daemon's
// discovery registry and, by default, its offline index mirror.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cargotom-ls")
	}
	return filepath.Join(dir, "cargotom-ls")
}

func defaultIndexPath() string {
	return filepath.Join(configDir(), "offline-index.sqlite3")
}
