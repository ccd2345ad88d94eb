package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hjpark/finnews/app/crawler"
)

// Hash computes a deterministic digest over a canonical serialization
// of the record set. Records are sorted by title before hashing, so the
// digest is insensitive to discovery order.
func Hash(records []crawler.Record) string {
	sorted := make([]crawler.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Title < sorted[j].Title })

	var b strings.Builder
	for _, rec := range sorted {
		fmt.Fprintf(&b, "%s|%s\n", rec.Title, rec.Link)
	}

	digest := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(digest[:])
}

// Fingerprint compares a freshly crawled record set against the most
// recent persisted snapshot for the same date.
type Fingerprint struct {
	store *Store
}

func NewFingerprint(store *Store) *Fingerprint {
	return &Fingerprint{store: store}
}

// IsDuplicateOfLatest reports whether records match the latest snapshot
// for the date. Hashes are compared first; when the stored snapshot
// carries no digest or the digests differ, it falls back to comparing
// record count and the set of titles. No existing snapshot means not a
// duplicate.
func (f *Fingerprint) IsDuplicateOfLatest(records []crawler.Record, date string) bool {
	latest, identity, err := f.store.Latest(date)
	if err != nil {
		slog.Warn("Failed to load latest snapshot for duplicate check", "date", date, "error", err)
		return false
	}
	if latest == nil {
		return false
	}

	if latest.DataHash != "" && Hash(records) == latest.DataHash {
		slog.Debug("Duplicate snapshot detected by hash", "date", date, "identity", identity)
		return true
	}

	if len(records) != len(latest.News) {
		return false
	}

	titles := make(map[string]bool, len(records))
	for _, rec := range records {
		titles[rec.Title] = true
	}
	for _, rec := range latest.News {
		if !titles[rec.Title] {
			return false
		}
	}

	slog.Debug("Duplicate snapshot detected by title set", "date", date, "identity", identity)
	return true
}
