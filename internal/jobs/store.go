// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Store persists job records.
type Store interface {
	Create(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns records newest first; limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// NewStore returns a SQLite store at dbPath, or an in-memory store when
// dbPath is empty.
func NewStore(dbPath string) (Store, error) {
	if dbPath == "" {
		return NewMemoryStore(), nil
	}
	return NewSqliteStore(dbPath)
}

// MemoryStore is a Store that forgets everything on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("job %s already exists", rec.ID)
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; !ok {
		return ErrNotFound
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := slices.Clone(s.order)
	slices.Reverse(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
