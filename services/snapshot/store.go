package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"watchreel/models"
)

// Store reads and writes the per-kind catalog snapshot files. Each write is
// a whole-file atomic overwrite: a crash mid-run never leaves a partial
// snapshot visible to readers.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Path returns the snapshot file path for a kind.
func (s *Store) Path(kind models.Kind) string {
	return filepath.Join(s.dir, kind.SnapshotFile())
}

// Write replaces the snapshot for the given kind with items. The payload is
// encoded to a temp file and renamed into place.
func (s *Store) Write(kind models.Kind, items []models.EnrichedItem) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if items == nil {
		items = []models.EnrichedItem{}
	}

	path := s.Path(kind)
	tmp := path + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load returns the current snapshot for a kind. A missing file yields an
// empty list, not an error.
func (s *Store) Load(kind models.Kind) ([]models.EnrichedItem, error) {
	f, err := s.fs.Open(s.Path(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var items []models.EnrichedItem
	if err := json.NewDecoder(f).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return items, nil
}
