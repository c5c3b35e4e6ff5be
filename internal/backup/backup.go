// Package backup writes and restores compressed archives of the result store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/hyperscore/internal/pathutil"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/store"
)

// Archive is the decompressed payload of a backup file.
type Archive struct {
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	Runs      []*simulation.Result `json:"runs"`
}

// DefaultBackupDir returns the default backup directory (~/.hyperscore/backups/).
func DefaultBackupDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".hyperscore", "backups"), nil
}

// Backup writes every run in rs to outputPath. When allowedDirs is given,
// outputPath must lie inside one of them.
func Backup(ctx context.Context, rs store.ResultStore, outputPath string, allowedDirs ...string) (*Header, error) {
	if len(allowedDirs) > 0 {
		if err := pathutil.ValidatePath(outputPath, allowedDirs); err != nil {
			return nil, fmt.Errorf("backup path rejected: %w", err)
		}
	}

	sums, err := rs.List(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	archive := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now(),
		Runs:      make([]*simulation.Result, 0, len(sums)),
	}
	for _, sum := range sums {
		r, err := rs.Get(ctx, sum.RunID)
		if err != nil {
			return nil, fmt.Errorf("failed to read run %s: %w", sum.RunID, err)
		}
		archive.Runs = append(archive.Runs, r)
	}

	return Write(outputPath, archive)
}

// RestoreMode controls how restore handles existing runs.
type RestoreMode string

const (
	// RestoreMerge skips runs whose id is already stored (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace deletes every stored run before restoring.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult contains statistics about the restore operation.
type RestoreResult struct {
	RunsRestored int `json:"runs_restored"`
	RunsSkipped  int `json:"runs_skipped"`
	RunsDeleted  int `json:"runs_deleted,omitempty"`
}

// Restore loads the runs in inputPath into rs.
func Restore(ctx context.Context, rs store.ResultStore, inputPath string, mode RestoreMode, allowedDirs ...string) (*RestoreResult, error) {
	if len(allowedDirs) > 0 {
		if err := pathutil.ValidatePath(inputPath, allowedDirs); err != nil {
			return nil, fmt.Errorf("restore path rejected: %w", err)
		}
	}

	archive, err := Read(inputPath)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	if mode == RestoreReplace {
		sums, err := rs.List(ctx, store.Filter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		for _, sum := range sums {
			if err := rs.Delete(ctx, sum.RunID); err != nil {
				return nil, fmt.Errorf("failed to delete run %s: %w", sum.RunID, err)
			}
			result.RunsDeleted++
		}
	}

	for _, r := range archive.Runs {
		if r == nil || r.RunID == "" {
			result.RunsSkipped++
			continue
		}
		if mode != RestoreReplace {
			_, err := rs.Get(ctx, r.RunID)
			if err == nil {
				result.RunsSkipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to check run %s: %w", r.RunID, err)
			}
		}
		if err := rs.Save(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to restore run %s: %w", r.RunID, err)
		}
		result.RunsRestored++
	}

	return result, nil
}

// GenerateBackupPath creates a timestamped backup filename in the given directory.
func GenerateBackupPath(dir string) string {
	ts := time.Now().Format(stampLayout)
	return filepath.Join(dir, fmt.Sprintf("%s%s%s", filePrefix, ts, fileExt))
}
