package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Snapshot artifacts are named <YYYY-MM-DD>_<NN>.json. Files with any
// other name belong to other subsystems and are never touched.
var identityPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(\d+)\.json$`)

const dateLayout = "2006-01-02"

// FormatIdentity builds the artifact identity for a date and sequence
// number: <date>_<NN> with a two-digit zero-padded sequence.
func FormatIdentity(date string, sequence int) string {
	return fmt.Sprintf("%s_%02d", date, sequence)
}

// Store reads and writes snapshot artifacts as JSON files under a
// single directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Write persists a payload under the given identity, creating the data
// directory if needed.
func (s *Store) Write(identity string, payload *Payload) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, identity+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", identity, err)
	}

	return nil
}

// Read loads a payload by identity. A missing artifact yields (nil,
// nil).
func (s *Store) Read(identity string) (*Payload, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, identity+".json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", identity, err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", identity, err)
	}

	return &payload, nil
}

// List returns the identities of all artifacts for a date, sorted by
// sequence number ascending. Malformed names are skipped.
func (s *Store) List(date string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	type candidate struct {
		identity string
		sequence int
	}
	var found []candidate

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := identityPattern.FindStringSubmatch(entry.Name())
		if m == nil || m[1] != date {
			continue
		}
		seq, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		found = append(found, candidate{
			identity: entry.Name()[:len(entry.Name())-len(".json")],
			sequence: seq,
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].sequence < found[j].sequence })

	identities := make([]string, 0, len(found))
	for _, c := range found {
		identities = append(identities, c.identity)
	}
	return identities, nil
}

// Latest loads the most recent payload for a date, or (nil, "") when no
// artifact exists.
func (s *Store) Latest(date string) (*Payload, string, error) {
	identities, err := s.List(date)
	if err != nil {
		return nil, "", err
	}
	if len(identities) == 0 {
		return nil, "", nil
	}

	latest := identities[len(identities)-1]
	payload, err := s.Read(latest)
	if err != nil {
		return nil, "", err
	}
	return payload, latest, nil
}
