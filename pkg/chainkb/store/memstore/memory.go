// Package memstore is an in-memory implementation of store.Store for
// tests and for sessions that do not need persistence.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cognicore/chainkb/pkg/chainkb/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu          sync.RWMutex
	nextSeq     int64
	entries     []store.Entry
	seen        map[string]struct{}
	derivations []store.Derivation
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextSeq: 1,
		seen:    make(map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// AppendExpression appends an expression, once per distinct text.
func (s *Store) AppendExpression(ctx context.Context, expr string, kind store.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expr == "" {
		return nil
	}
	if _, ok := s.seen[expr]; ok {
		return nil
	}
	s.seen[expr] = struct{}{}
	s.entries = append(s.entries, store.Entry{
		Seq:        s.nextSeq,
		Kind:       kind,
		Expression: expr,
		ToldAt:     time.Now().UTC(),
	})
	s.nextSeq++
	return nil
}

// ListExpressions returns all entries in tell order.
func (s *Store) ListExpressions(ctx context.Context) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// RecordDerivation appends a derivation to the log.
func (s *Store) RecordDerivation(ctx context.Context, d store.Derivation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.Matched = append([]string(nil), d.Matched...)
	s.derivations = append(s.derivations, d)
	return nil
}

// ListDerivations returns the derivation log in recording order,
// optionally filtered to one rule. An empty rule matches everything.
func (s *Store) ListDerivations(ctx context.Context, rule string) ([]store.Derivation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Derivation
	for _, d := range s.derivations {
		if rule != "" && d.Rule != rule {
			continue
		}
		cp := d
		cp.Matched = append([]string(nil), d.Matched...)
		out = append(out, cp)
	}
	return out, nil
}
