package snapshot

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper removes snapshot artifacts older than a retention horizon.
// Only files matching the identity naming scheme are considered; the
// current date's artifacts are never removed.
type Sweeper struct {
	dir string
}

func NewSweeper(dir string) *Sweeper {
	return &Sweeper{dir: dir}
}

// Sweep deletes artifacts whose embedded date is more than horizonDays
// before today and returns the number of deletions. Artifacts dated
// today are always kept, as are files whose date fails to parse.
// Per-file failures are logged and skipped.
func (s *Sweeper) Sweep(horizonDays int) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read data directory for sweep", "dir", s.dir, "error", err)
		}
		return 0
	}

	now := time.Now()
	today := now.Format(dateLayout)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -horizonDays)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := identityPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			// Not a snapshot artifact; leave it alone.
			continue
		}

		dateStr := m[1]
		if dateStr == today {
			continue
		}

		fileDate, err := time.ParseInLocation(dateLayout, dateStr, now.Location())
		if err != nil {
			continue
		}

		if !fileDate.Before(cutoff) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove aged artifact", "file", entry.Name(), "error", err)
			continue
		}

		slog.Info("Removed aged artifact", "file", entry.Name())
		removed++
	}

	return removed
}
