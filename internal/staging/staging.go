// Package staging persists at most one in-flight import batch so the upload
// and confirmation steps can run as separate invocations without losing work.
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tamadeu/divi-import/internal/model"
)

// Store holds one ImportBatch as a JSON blob at a well-known path. Save
// overwrites any previous batch: only one import is in flight at a time.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore creates a staging store backed by the given file path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Save writes the batch, replacing any previously staged one. The write is
// atomic: temp file in the same directory, then rename.
func (s *Store) Save(batch *model.ImportBatch) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling staged batch: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing staged batch: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", tmp).Msg("removing stale staging temp file")
		}
		return fmt.Errorf("replacing staged batch: %w", err)
	}
	return nil
}

// Load returns the staged batch, or ok=false when no import is in progress.
func (s *Store) Load() (*model.ImportBatch, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading staged batch: %w", err)
	}

	var batch model.ImportBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, false, fmt.Errorf("parsing staged batch: %w", err)
	}
	return &batch, true, nil
}

// Clear removes the staged batch. Clearing when nothing is staged is fine.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing staged batch: %w", err)
	}
	return nil
}
