package config

import (
	"os"
	"path/filepath"
)

// EnvPrefix prefixes every environment override, e.g. GRAPHQA_NEO4J_PASSWORD.
const EnvPrefix = "GRAPHQA"

// DefaultHomeDir returns the default graphqa home directory.
// It uses ~/.graphqa or falls back to a temporary directory if user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".graphqa")
	}
	return filepath.Join(userHome, ".graphqa")
}

// DefaultConfigPath returns the default config file path for a given home directory
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
