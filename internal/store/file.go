package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const documentVersion = 1

// document is the on-disk shape: a schema version and an unordered
// collection of user records.
type document struct {
	Version int          `json:"version"`
	Users   []UserRecord `json:"users"`
}

// FileStore keeps all user records in a single JSON document on disk.
// The whole document is loaded on open and rewritten on every upsert;
// writes are serialized under a single mutex.
type FileStore struct {
	path string

	mu  sync.RWMutex
	doc document
}

// OpenFile opens the store at path, initializing an empty document if the
// file does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		doc:  document{Version: documentVersion},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parsing store file: %w", err)
	}

	return s, nil
}

// Get returns the record for a user id, or ErrNotFound.
func (s *FileStore) Get(_ context.Context, userID int64) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.UserID == userID {
			rec := u
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// Upsert creates or replaces the record for rec.UserID and rewrites the
// document.
func (s *FileStore) Upsert(_ context.Context, rec *UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, u := range s.doc.Users {
		if u.UserID == rec.UserID {
			s.doc.Users[i] = *rec
			replaced = true
			break
		}
	}
	if !replaced {
		s.doc.Users = append(s.doc.Users, *rec)
	}

	return s.flush()
}

// All returns every record in the store.
func (s *FileStore) All(_ context.Context) ([]UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]UserRecord, len(s.doc.Users))
	copy(users, s.doc.Users)
	return users, nil
}

// flush writes the document to disk. Callers must hold the write lock
// (or be the only reference, as in OpenFile).
func (s *FileStore) flush() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store document: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	return nil
}
