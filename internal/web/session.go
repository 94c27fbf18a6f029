package web

import (
	"sync"

	"github.com/pedalworks/rosterd/internal/reconcile"
	"github.com/pedalworks/rosterd/internal/roster"
)

// session holds the in-flight import for one entity type: the parsed
// CSV waiting for reconciliation and, after it, the staged pending
// state. One session per entity; a new import replaces the old one
// wholesale.
type session struct {
	mu sync.Mutex

	headers []string
	rows    [][]string
	pending *reconcile.Pending
}

// setCSV installs freshly parsed CSV content and drops any staged
// reconciliation, which was computed against the previous upload.
func (s *session) setCSV(headers []string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = append([]string(nil), headers...)
	s.rows = rows
	s.pending = nil
}

func (s *session) csv() (headers []string, rows [][]string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil, nil, false
	}
	return s.headers, s.rows, true
}

// unstage drops the staged reconciliation but keeps the parsed CSV.
// Editing the mapping invalidates a pending computed under the old
// one, while the upload itself stays reusable.
func (s *session) unstage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

func (s *session) stage(p *reconcile.Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = p
}

func (s *session) staged() (*reconcile.Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil, false
	}
	return s.pending, true
}

func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = nil
	s.rows = nil
	s.pending = nil
}

// sessions is the per-entity session registry.
type sessions struct {
	mu   sync.Mutex
	byEn map[roster.EntityType]*session
}

func newSessions() *sessions {
	return &sessions{byEn: make(map[roster.EntityType]*session)}
}

func (s *sessions) get(entity roster.EntityType) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byEn[entity]; ok {
		return sess
	}
	sess := &session{}
	s.byEn[entity] = sess
	return sess
}
