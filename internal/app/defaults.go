package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults holds the default file locations.
type Defaults struct {
	ConfigPath string
	BaseDir    string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - WALLSORT_CONFIG_PATH: config file location (default: ~/.config/wallsort.toml)
//   - WALLSORT_HOME: base directory for logs and the journal (default: ~/.local/share/wallsort)
func GetDefaults() (*Defaults, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return &Defaults{ConfigPath: configPath, BaseDir: baseDir}, nil
}

func getConfigPath() (string, error) {
	if path := os.Getenv("WALLSORT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wallsort.toml"), nil
}

func getBaseDir() (string, error) {
	if path := os.Getenv("WALLSORT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "wallsort"), nil
}
