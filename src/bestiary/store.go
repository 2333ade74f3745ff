package bestiary

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vanguardtable/vanguard/src/oops"
)

// A Store persists the creature lookup table: a flat mapping of
// lower-cased creature names to image references.
type Store interface {
	// Load returns the full table. A store that has never been written to
	// returns an empty map, not an error.
	Load() (map[string]string, error)

	// Save replaces the full table.
	Save(table map[string]string) error
}

// FileStore keeps the lookup table as a pretty-printed JSON object in a
// single file, matching the layout produced by older tooling so existing
// creature_database.json files keep working.
type FileStore struct {
	Path string
}

var _ Store = &FileStore{}

func (s *FileStore) Load() (map[string]string, error) {
	contents, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, oops.New(err, "failed to read lookup table %s", s.Path)
	}

	table := map[string]string{}
	err = json.Unmarshal(contents, &table)
	if err != nil {
		// A corrupt table is an error, not an empty table. Read paths degrade
		// to empty on their own, and reporting the failure keeps seeding and
		// writes from clobbering the bad file before anyone can inspect it.
		return nil, oops.New(err, "creature lookup table %s is corrupt", s.Path)
	}

	return table, nil
}

func (s *FileStore) Save(table map[string]string) error {
	contents, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return oops.New(err, "failed to marshal lookup table")
	}

	err = os.MkdirAll(filepath.Dir(s.Path), os.ModePerm)
	if err != nil {
		return oops.New(err, "failed to create directory for lookup table")
	}

	err = os.WriteFile(s.Path, contents, 0644)
	if err != nil {
		return oops.New(err, "failed to write lookup table %s", s.Path)
	}

	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu    sync.Mutex
	table map[string]string

	// When set, the corresponding method returns this error. Lets tests
	// exercise the persistence failure paths.
	LoadErr error
	SaveErr error
}

var _ Store = &MemStore{}

func NewMemStore(table map[string]string) *MemStore {
	copied := make(map[string]string, len(table))
	for k, v := range table {
		copied[k] = v
	}
	return &MemStore{table: copied}
}

func (s *MemStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	copied := make(map[string]string, len(s.table))
	for k, v := range s.table {
		copied[k] = v
	}
	return copied, nil
}

func (s *MemStore) Save(table map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	copied := make(map[string]string, len(table))
	for k, v := range table {
		copied[k] = v
	}
	s.table = copied
	return nil
}
