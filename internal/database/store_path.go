package database

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName    = "screenpipe"
	storeFileName = "store.bin"
)

// LocalDataDir returns the platform's per-user local data directory:
// $XDG_DATA_HOME or ~/.local/share on Unix, ~/Library/Application Support on
// macOS and %LOCALAPPDATA% on Windows.
func LocalDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", errors.New("%LOCALAPPDATA% is not defined")
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" && filepath.IsAbs(dir) {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// StorePath returns <dataDir>/screenpipe/store.bin.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, appDirName, storeFileName)
}

// DefaultStorePath resolves the store file under LocalDataDir.
func DefaultStorePath() (string, error) {
	dir, err := LocalDataDir()
	if err != nil {
		return "", err
	}
	return StorePath(dir), nil
}
