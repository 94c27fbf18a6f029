package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pedalworks/rosterd/internal/mapping"
	"github.com/pedalworks/rosterd/internal/roster"
)

// Memory is an in-process store used by tests and by the server when
// no database is configured. Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	records  map[roster.EntityType]map[string]*roster.Record
	mappings map[roster.EntityType]*mapping.Mapping
}

var (
	_ Roster   = (*Memory)(nil)
	_ Mappings = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		records:  make(map[roster.EntityType]map[string]*roster.Record),
		mappings: make(map[roster.EntityType]*mapping.Mapping),
	}
}

func (s *Memory) List(_ context.Context, entity roster.EntityType) ([]*roster.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*roster.Record, 0, len(s.records[entity]))
	for _, rec := range s.records[entity] {
		out = append(out, rec.Clone())
	}
	sortRecords(out)
	return out, nil
}

func (s *Memory) Get(_ context.Context, entity roster.EntityType, id string) (*roster.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[entity][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Memory) ReplaceAll(_ context.Context, entity roster.EntityType, records []*roster.Record) ([]RecordError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[entity] == nil {
		s.records[entity] = make(map[string]*roster.Record)
	}
	for _, rec := range records {
		s.records[entity][rec.ID] = rec.Clone()
	}
	return nil, nil
}

func (s *Memory) SetArchived(_ context.Context, entity roster.EntityType, id string, archived bool) (*roster.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[entity][id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Archived = archived
	return rec.Clone(), nil
}

func (s *Memory) LoadMapping(_ context.Context, entity roster.EntityType) (*mapping.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[entity]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

func (s *Memory) SaveMapping(_ context.Context, m *mapping.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.EntityType] = m.Clone()
	return nil
}

func sortRecords(recs []*roster.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		li := strings.ToLower(recs[i].LastName)
		lj := strings.ToLower(recs[j].LastName)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(recs[i].FirstName) < strings.ToLower(recs[j].FirstName)
	})
}
