package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// memoryEntries bounds the in-memory record tier
	memoryEntries = 128

	// memoryTTL expires memory-tier entries so long-running processes
	// re-read records another process may have rewritten
	memoryTTL = time.Hour
)

// Store persists generation records as JSON files under a directory,
// with an expirable LRU memory tier in front of the disk reads.
//
// Single-writer assumption: only one build at a time may use a given
// store directory.
type Store struct {
	dir    string
	memory *lru.LRU[string, *Record]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewStore creates a record store rooted at dir, creating it if absent
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{
		dir:    dir,
		memory: lru.NewLRU[string, *Record](memoryEntries, nil, memoryTTL),
	}, nil
}

// Get returns the record for a namespace, or ErrCacheMiss
func (s *Store) Get(namespace string) (*Record, error) {
	path, err := s.recordPath(namespace)
	if err != nil {
		return nil, err
	}

	if rec, ok := s.memory.Get(namespace); ok {
		s.hits.Add(1)
		return rec, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.misses.Add(1)
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cache record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode cache record: %w", err)
	}

	s.memory.Add(namespace, &rec)
	s.hits.Add(1)
	return &rec, nil
}

// Put persists a record, replacing any previous record for its namespace
func (s *Store) Put(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	path, err := s.recordPath(rec.Namespace)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache record: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache record: %w", err)
	}

	s.memory.Add(rec.Namespace, rec)
	return nil
}

// Invalidate removes the record for a namespace. Removing a record that
// does not exist is not an error.
func (s *Store) Invalidate(namespace string) error {
	path, err := s.recordPath(namespace)
	if err != nil {
		return err
	}
	s.memory.Remove(namespace)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache record: %w", err)
	}
	return nil
}

// Stats returns hit/miss counters
func (s *Store) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}

func (s *Store) recordPath(namespace string) (string, error) {
	if namespace == "" || strings.ContainsAny(namespace, `/\`) || strings.Contains(namespace, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	return filepath.Join(s.dir, namespace+".json"), nil
}
