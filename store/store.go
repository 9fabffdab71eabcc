// Package store persists session state as JSON on disk so a paper-trading
// session can stop and resume without losing its portfolio or trade history.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/autotrader/ledger"
)

const sessionFile = "session.json"

// sessionDoc is the on-disk layout. Decimals serialize as strings, so state
// round-trips without precision loss.
type sessionDoc struct {
	SavedAt   time.Time       `json:"saved_at"`
	Portfolio ledger.Snapshot `json:"portfolio"`
}

// Store reads and writes session state under a single directory.
type Store struct {
	dir string
}

// New creates the data directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string { return filepath.Join(s.dir, sessionFile) }

// SaveSnapshot writes the portfolio state atomically: a temp file in the same
// directory is renamed over the previous session, so readers never observe a
// half-written file.
func (s *Store) SaveSnapshot(snap ledger.Snapshot) error {
	doc := sessionDoc{SavedAt: time.Now().UTC(), Portfolio: snap}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, sessionFile+".*")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: replace session: %w", err)
	}
	return nil
}

// LoadSnapshot reads the persisted portfolio. The second return is false when
// no session has been saved yet.
func (s *Store) LoadSnapshot() (ledger.Snapshot, bool, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return ledger.Snapshot{}, false, nil
	}
	if err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("store: read session: %w", err)
	}

	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ledger.Snapshot{}, false, fmt.Errorf("store: parse session: %w", err)
	}
	return doc.Portfolio, true, nil
}

// Clear removes the persisted session, if any.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: clear session: %w", err)
	}
	return nil
}
