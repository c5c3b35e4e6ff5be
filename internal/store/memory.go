package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

// InMemoryResultStore implements ResultStore for testing and one-shot runs.
// Results are stored as encoded snapshots so callers never share state with
// the store.
type InMemoryResultStore struct {
	mu   sync.RWMutex
	runs map[string][]byte
	sums map[string]Summary
}

// NewInMemoryResultStore creates a new in-memory store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{
		runs: make(map[string][]byte),
		sums: make(map[string]Summary),
	}
}

// Save stores a copy of r.
func (s *InMemoryResultStore) Save(ctx context.Context, r *simulation.Result) error {
	if r == nil || r.RunID == "" {
		return fmt.Errorf("run ID is required")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[r.RunID] = data
	s.sums[r.RunID] = Summarize(r)
	return nil
}

// Get returns a copy of the stored run.
func (s *InMemoryResultStore) Get(ctx context.Context, runID string) (*simulation.Result, error) {
	s.mu.RLock()
	data, ok := s.runs[runID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	var r simulation.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &r, nil
}

// List returns matching summaries, newest first.
func (s *InMemoryResultStore) List(ctx context.Context, f Filter) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.sums))
	for _, sum := range s.sums {
		if f.matches(sum) {
			out = append(out, sum)
		}
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Delete removes a run.
func (s *InMemoryResultStore) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	delete(s.runs, runID)
	delete(s.sums, runID)
	return nil
}

// Close is a no-op.
func (s *InMemoryResultStore) Close() error {
	return nil
}

func sortNewestFirst(sums []Summary) {
	sort.Slice(sums, func(i, j int) bool {
		if !sums[i].StartedAt.Equal(sums[j].StartedAt) {
			return sums[i].StartedAt.After(sums[j].StartedAt)
		}
		return sums[i].RunID < sums[j].RunID
	})
}
