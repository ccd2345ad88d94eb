package snapshot

import (
	"log/slog"
	"strconv"
	"strings"
)

// Allocator assigns a monotonically increasing sequence number per
// calendar date by scanning the existing artifacts.
//
// Known limitation: the scan-then-allocate is not atomic, so two
// concurrent invocations for the same date can mint the same sequence
// number. The pipeline runs as a single scheduled writer per date,
// which is the operating assumption here.
type Allocator struct {
	store *Store
}

func NewAllocator(store *Store) *Allocator {
	return &Allocator{store: store}
}

// NextSequence returns max(existing)+1 for the date, or 1 when no
// artifact exists. Gaps are not refilled. Malformed artifact names are
// skipped, never fatal.
func (a *Allocator) NextSequence(date string) int {
	identities, err := a.store.List(date)
	if err != nil {
		slog.Warn("Failed to list artifacts for sequence allocation", "date", date, "error", err)
		return 1
	}

	max := 0
	for _, identity := range identities {
		idx := strings.LastIndex(identity, "_")
		if idx < 0 {
			continue
		}
		seq, err := strconv.Atoi(identity[idx+1:])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}

	return max + 1
}
