package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// BackupInfo describes one archive on disk.
type BackupInfo struct {
	Path      string
	Size      int64
	CreatedAt time.Time
	RunCount  int
}

// RetentionPolicy selects the archives to keep from a newest-first list.
// Implementations return a subsequence of backups.
type RetentionPolicy interface {
	Keep(backups []BackupInfo, now time.Time) []BackupInfo
}

// KeepLatest keeps the N newest archives.
type KeepLatest int

func (n KeepLatest) Keep(backups []BackupInfo, _ time.Time) []BackupInfo {
	if n < 0 {
		n = 0
	}
	return backups[:min(int(n), len(backups))]
}

// KeepWithin keeps archives created less than the duration before now.
type KeepWithin time.Duration

func (d KeepWithin) Keep(backups []BackupInfo, now time.Time) []BackupInfo {
	cutoff := now.Add(-time.Duration(d))
	var kept []BackupInfo
	for _, b := range backups {
		if b.CreatedAt.After(cutoff) {
			kept = append(kept, b)
		}
	}
	return kept
}

// KeepUnderSize keeps the newest archives whose combined size fits in the
// budget. The newest archive is always kept, even when it alone is too big.
type KeepUnderSize int64

func (limit KeepUnderSize) Keep(backups []BackupInfo, _ time.Time) []BackupInfo {
	var total int64
	for i, b := range backups {
		total += b.Size
		if total > int64(limit) && i > 0 {
			return backups[:i]
		}
	}
	return backups
}

// AnyOf keeps an archive when at least one of its policies keeps it.
type AnyOf []RetentionPolicy

func (p AnyOf) Keep(backups []BackupInfo, now time.Time) []BackupInfo {
	wanted := make(map[string]struct{}, len(backups))
	for _, policy := range p {
		for _, b := range policy.Keep(backups, now) {
			wanted[b.Path] = struct{}{}
		}
	}
	var kept []BackupInfo
	for _, b := range backups {
		if _, ok := wanted[b.Path]; ok {
			kept = append(kept, b)
		}
	}
	return kept
}

// ListBackups returns the archives in dir, newest first. A missing
// directory yields an empty list.
//
// Creation time comes from the archive header when it is readable, then the
// timestamp in the file name, then the file's modification time.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !isBackupFile(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}

		b := BackupInfo{
			Path:      filepath.Join(dir, e.Name()),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		}
		if ts, ok := nameStamp(e.Name()); ok {
			b.CreatedAt = ts
		}
		if h, err := ReadHeader(b.Path); err == nil {
			b.RunCount = h.RunCount
			if !h.CreatedAt.IsZero() {
				b.CreatedAt = h.CreatedAt
			}
		}
		backups = append(backups, b)
	}

	slices.SortStableFunc(backups, func(a, b BackupInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
	return backups, nil
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt)
}

func nameStamp(name string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	ts, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	return ts, err == nil
}

// PlanRetention splits the archives in dir into those the policy keeps and
// those it would remove, without touching the filesystem.
func PlanRetention(dir string, policy RetentionPolicy, now time.Time) (keep, prune []BackupInfo, err error) {
	backups, err := ListBackups(dir)
	if err != nil {
		return nil, nil, err
	}
	keep = policy.Keep(backups, now)
	kept := make(map[string]struct{}, len(keep))
	for _, b := range keep {
		kept[b.Path] = struct{}{}
	}
	for _, b := range backups {
		if _, ok := kept[b.Path]; !ok {
			prune = append(prune, b)
		}
	}
	return keep, prune, nil
}

// ApplyRetention removes the archives in dir the policy does not keep and
// returns their paths. It stops at the first removal error.
func ApplyRetention(dir string, policy RetentionPolicy) ([]string, error) {
	_, prune, err := PlanRetention(dir, policy, time.Now())
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, b := range prune {
		if err := os.Remove(b.Path); err != nil {
			return deleted, fmt.Errorf("removing %s: %w", filepath.Base(b.Path), err)
		}
		deleted = append(deleted, b.Path)
	}
	return deleted, nil
}

// ParseDuration accepts Go durations ("720h") plus whole days ("30d") and
// weeks ("2w").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	unit := map[byte]time.Duration{'d': 24 * time.Hour, 'w': 7 * 24 * time.Hour}[s[len(s)-1]]
	if unit == 0 {
		return 0, fmt.Errorf("invalid duration %q (use h, d or w)", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(n) * unit, nil
}

var sizeUnits = []struct {
	suffix string
	bytes  int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize converts "500KB", "100MB" or "1GB" to bytes. Units are binary
// and case-insensitive.
func ParseSize(s string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return 0, errors.New("empty size")
	}
	for _, u := range sizeUnits {
		num, ok := strings.CutSuffix(upper, u.suffix)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid size %q", s)
		}
		return n * u.bytes, nil
	}
	return 0, fmt.Errorf("invalid size %q (use B, KB, MB or GB)", s)
}
