// Package store persists saved connection specs as a JSON file so that
// configured databases survive restarts. Passwords are stored as given;
// protecting the file is the caller's concern.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opendevtool/dbbridge/pkg/adapter"
)

// FileName is the on-disk name of the saved connection list.
const FileName = "db_connections.json"

// SavedConnection is one persisted connection spec.
type SavedConnection struct {
	ID        string                   `json:"id"`
	Config    adapter.ConnectionConfig `json:"config"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Store reads and writes the saved connection file. All methods are safe
// for concurrent use; the file is rewritten atomically on every change.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{
		path: filepath.Join(dir, FileName),
		now:  time.Now,
	}
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// List returns all saved connections. A missing file is an empty list.
func (s *Store) List() ([]SavedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the saved connection with the given id.
func (s *Store) Get(id string) (SavedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return SavedConnection{}, err
	}
	for _, sc := range saved {
		if sc.ID == id {
			return sc, nil
		}
	}
	return SavedConnection{}, &adapter.NotFoundError{
		ResourceType: "saved connection",
		ResourceName: id,
	}
}

// Save persists a connection spec. An empty id creates a new entry with a
// generated uuid; a known id updates that entry in place.
func (s *Store) Save(id string, config adapter.ConnectionConfig) (SavedConnection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return SavedConnection{}, err
	}

	now := s.now().UTC()
	if id != "" {
		for i, sc := range saved {
			if sc.ID == id {
				saved[i].Config = config
				saved[i].UpdatedAt = now
				if err := s.write(saved); err != nil {
					return SavedConnection{}, err
				}
				return saved[i], nil
			}
		}
		return SavedConnection{}, &adapter.NotFoundError{
			ResourceType: "saved connection",
			ResourceName: id,
		}
	}

	entry := SavedConnection{
		ID:        uuid.NewString(),
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}
	saved = append(saved, entry)
	if err := s.write(saved); err != nil {
		return SavedConnection{}, err
	}
	return entry, nil
}

// Delete removes a saved connection. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	kept := saved[:0]
	for _, sc := range saved {
		if sc.ID != id {
			kept = append(kept, sc)
		}
	}
	if len(kept) == len(saved) {
		return nil
	}
	return s.write(kept)
}

func (s *Store) load() ([]SavedConnection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []SavedConnection{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var saved []SavedConnection
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return saved, nil
}

// write replaces the file contents via a temp file and rename so a crash
// mid-write never corrupts the saved list.
func (s *Store) write(saved []SavedConnection) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding saved connections: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
