// Package profilestore persists the authenticated user profile. JSON-backed
// storage: a single human-readable file under the data directory, with one
// writer (the session store). The transport credential lives elsewhere.
package profilestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/grocer/internal/model"
)

const profileFileName = "profile.json"

// ErrNotFound reports that no profile record exists.
var ErrNotFound = errors.New("no stored profile")

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, profileFileName)
}

// Load reads the persisted profile. A missing record is ErrNotFound; a record
// that cannot be parsed or lacks identity fields is an error the caller is
// expected to treat as stale.
func (s *Store) Load() (model.User, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("read profile: %w", err)
	}
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return model.User{}, fmt.Errorf("parse profile: %w", err)
	}
	if u.ID == "" && u.Email == "" {
		return model.User{}, fmt.Errorf("parse profile: missing identity fields")
	}
	return u, nil
}

func (s *Store) Save(u model.User) error {
	// ensure the data dir exists with 0700
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// write with 0600 (owner-only)
	if err := os.WriteFile(s.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Clear removes the record. Removing an absent record is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
