package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"fencecost/internal/errors"
)

// FileStore keeps one JSON document per quote under a directory
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Storage("failed to create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// path returns the document path for id; ids must be UUIDs so they cannot
// escape the base directory
func (s *FileStore) path(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return filepath.Join(s.basePath, u.String()+".json"), true
}

func (s *FileStore) Save(ctx context.Context, q *StoredQuote) error {
	if err := prepare(q); err != nil {
		return err
	}
	path, ok := s.path(q.ID)
	if !ok {
		return errors.Validation("id", "quote id must be a UUID, got %q", q.ID)
	}

	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return errors.Storage("failed to marshal quote", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// write then rename so readers never see a partial document
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Storage("failed to write quote", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Storage("failed to write quote", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	path, ok := s.path(id)
	if !ok {
		return nil, errors.NotFound("quote", id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("quote", id)
		}
		return nil, errors.Storage("failed to read quote", err)
	}

	var q StoredQuote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Storage("failed to unmarshal quote", err)
	}
	return &q, nil
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Storage("failed to read storage", err)
	}

	var results []*StoredQuote
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}
		var q StoredQuote
		if err := json.Unmarshal(data, &q); err != nil {
			continue
		}
		if filter.matches(&q) {
			results = append(results, &q)
		}
	}
	return filter.apply(results), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, ok := s.path(id)
	if !ok {
		return errors.NotFound("quote", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("quote", id)
		}
		return errors.Storage("failed to delete quote", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
