// Package storage persists the restorable slice of client state across
// process restarts. The session store is its only writer; everything else
// observes credentials through the session store, never through this file.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-admin-client/users"
)

// TokenPair is the raw credential pair attached to outgoing requests.
type TokenPair struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// PersistedSession is the durable subset of a session. Loading and error
// flags are deliberately not part of it.
type PersistedSession struct {
	User         users.Identity `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// State is the full on-disk layout: the auth snapshot plus the raw token
// pair kept under its own key for header attachment.
type State struct {
	User            *users.Identity   `json:"user,omitempty"`
	Session         *PersistedSession `json:"session,omitempty"`
	IsAuthenticated bool              `json:"is_authenticated"`
	Tokens          TokenPair         `json:"tokens"`
}

// Store reads and writes the state file. Writes are atomic
// (write-tmp, fsync, rename) and the file is kept at 0600 since it holds
// live credentials.
type Store struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

// New creates a store for the given file path.
func New(path string, logger zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  logger.With().Str("component", "storage").Logger(),
	}
}

// Load reads the persisted state. A missing file yields an empty anonymous
// state, not an error; a corrupt file is reported so the caller can fall
// back to anonymous explicitly.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, errors.Wrap(err, "[Store.Load] read state file")
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "[Store.Load] parse state file")
	}
	return &state, nil
}

// Save writes the state atomically with 0600 permissions.
func (s *Store) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[Store.Save] marshal state")
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "[Store.Save] create state dir")
		}
	}
	if err := s.writeAtomic(data); err != nil {
		return err
	}
	s.log.Debug().Str("path", s.path).Msg("state saved")
	return nil
}

// Clear removes the persisted state entirely.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Store.Clear] remove state file")
	}
	return nil
}

// Path returns the configured file path.
func (s *Store) Path() string {
	return s.path
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it over
// the target path. On any error the temp file is cleaned up.
func (s *Store) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrap(err, "[Store.writeAtomic] create temp file")
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return errors.Wrap(err, "[Store.writeAtomic] write temp file")
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return errors.Wrap(err, "[Store.writeAtomic] fsync temp file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "[Store.writeAtomic] close temp file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "[Store.writeAtomic] rename temp file")
	}
	return nil
}
