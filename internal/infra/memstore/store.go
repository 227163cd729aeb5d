// Package memstore implements the analysis record store as a
// mutex-guarded in-process map. Records are retained for the life of the
// process; there is no eviction and no on-disk state.
package memstore

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/gitworth/gitworth/internal/domain/analysis"
)

const defaultLatestLimit = 20

// Store keeps one Analysis per id. Every read hands out a deep copy so
// callers can never observe a record mid-mutation.
type Store struct {
	mu      sync.RWMutex
	records map[domain.AnalysisID]*domain.Analysis
	order   []domain.AnalysisID // insertion order, oldest first
}

func NewStore() *Store {
	return &Store{
		records: make(map[domain.AnalysisID]*domain.Analysis),
	}
}

// Create inserts a new record under its id, failing if the id exists.
func (s *Store) Create(ctx context.Context, a *domain.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[a.ID]; ok {
		return fmt.Errorf("create %s: %w", a.ID, domain.ErrAlreadyExists)
	}
	s.records[a.ID] = a.Clone()
	s.order = append(s.order, a.ID)
	return nil
}

// Get returns a copy of the record, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id domain.AnalysisID) (*domain.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, domain.ErrNotFound)
	}
	return a.Clone(), nil
}

// Put replaces the record wholesale. The record must have been created
// first; Put never resurrects an unknown id.
func (s *Store) Put(ctx context.Context, a *domain.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[a.ID]; !ok {
		return fmt.Errorf("put %s: %w", a.ID, domain.ErrNotFound)
	}
	s.records[a.ID] = a.Clone()
	return nil
}

// Latest returns up to limit records, newest first.
func (s *Store) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = defaultLatestLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Analysis, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[s.order[i]].Clone())
	}
	return out, nil
}
