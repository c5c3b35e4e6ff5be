package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// GlobalHyperscorePath returns the path to the global .hyperscore directory.
// On Unix: ~/.hyperscore
// On Windows: %USERPROFILE%\.hyperscore
func GlobalHyperscorePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".hyperscore"), nil
}

// LocalHyperscorePath returns the path to the local .hyperscore directory
// for the given project root.
func LocalHyperscorePath(projectRoot string) string {
	return filepath.Join(projectRoot, ".hyperscore")
}

// ResultsDBPath returns the result database path for a project root.
func ResultsDBPath(projectRoot string) string {
	return filepath.Join(LocalHyperscorePath(projectRoot), "results.db")
}
