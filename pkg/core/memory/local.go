package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"efficiency_optimizer/pkg/models"
)

// LocalStore is an in-process append-only store with a brute-force
// cosine scan. It optionally journals every entry to a JSONL file so a
// later process can reload the history. Safe for concurrent use.
type LocalStore struct {
	mu      sync.RWMutex
	entries []models.MemoryEntry
	path    string // empty disables journaling
}

var _ Store = (*LocalStore)(nil)

// NewLocalStore creates an empty in-memory store.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

// NewLocalStoreWithJournal creates a store that appends every entry to
// the JSONL file at path, loading any entries already present.
func NewLocalStoreWithJournal(path string) (*LocalStore, error) {
	s := &LocalStore{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to open memory journal: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e models.MemoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // skip corrupt lines, the journal stays usable
		}
		s.entries = append(s.entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memory journal: %w", err)
	}
	return s, nil
}

func (s *LocalStore) Store(_ context.Context, entry models.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if s.path == "" {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open memory journal: %w", err)
	}
	defer f.Close()
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal memory entry: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append memory entry: %w", err)
	}
	return nil
}

func (s *LocalStore) Query(_ context.Context, embedding []float32, filter Filter) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, e := range s.entries {
		if !matchesFilter(e, filter) {
			continue
		}
		matches = append(matches, Match{Entry: e, Score: cosine(embedding, e.Embedding)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (s *LocalStore) List(_ context.Context, filter Filter) ([]models.MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.MemoryEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !matchesFilter(s.entries[i], filter) {
			continue
		}
		out = append(out, s.entries[i])
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Len reports the number of stored entries.
func (s *LocalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
