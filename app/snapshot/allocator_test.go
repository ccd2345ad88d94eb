package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func writeArtifacts(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatalf("Failed to write fixture %s: %v", name, err)
		}
	}
}

func TestAllocator_NextSequence_EmptyDirectory(t *testing.T) {
	allocator := NewAllocator(NewStore(t.TempDir()))

	if got := allocator.NextSequence("2026-08-28"); got != 1 {
		t.Errorf("Expected sequence 1 on empty directory, got %d", got)
	}
}

func TestAllocator_NextSequence_NonContiguous(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir, "2026-08-28_01.json", "2026-08-28_03.json")

	allocator := NewAllocator(NewStore(dir))

	// max+1, not gap-fill.
	if got := allocator.NextSequence("2026-08-28"); got != 4 {
		t.Errorf("Expected sequence 4, got %d", got)
	}
}

func TestAllocator_NextSequence_IgnoresOtherDatesAndMalformedNames(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir,
		"2026-08-28_02.json",
		"2026-08-27_09.json",
		"global_point_2026-08-28.json",
		"2026-08-28_xx.json",
	)

	allocator := NewAllocator(NewStore(dir))

	if got := allocator.NextSequence("2026-08-28"); got != 3 {
		t.Errorf("Expected sequence 3, got %d", got)
	}
}
