package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the bfswalk home directory
const HomeEnvVar = "BFSWALK_HOME"

// rootMarker marks the directory whose .bfswalk/ is used as home
const rootMarker = ".bfswalk-root"

// GetHome returns the bfswalk home directory, starting the marker search at
// the current working directory
func GetHome() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return GetHomeWithRoot(cwd)
}

// GetHomeWithRoot returns the bfswalk home directory
// Priority order:
//  1. BFSWALK_HOME environment variable (if set)
//  2. <dir>/.bfswalk for the nearest ancestor of start holding a .bfswalk-root marker
//  3. <start>/.bfswalk
//
// The directory is created if it doesn't exist
func GetHomeWithRoot(start string) (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		return home, nil
	}

	base := start
	if root, ok := findMarkedRoot(start); ok {
		base = root
	}

	home := filepath.Join(base, ".bfswalk")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create bfswalk home directory: %w", err)
	}
	return home, nil
}

// findMarkedRoot walks upward from start looking for the .bfswalk-root marker
func findMarkedRoot(start string) (string, bool) {
	if start == "" {
		return "", false
	}

	current := start
	for {
		if _, err := os.Stat(filepath.Join(current, rootMarker)); err == nil {
			return current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// GetCatalogDBPath returns the path to the catalog database
// Always returns: $BFSWALK_HOME/catalog/scans.db
func GetCatalogDBPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "catalog", "scans.db"), nil
}

// GetConfigPath returns the path of the config file inside the home directory
func GetConfigPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}
