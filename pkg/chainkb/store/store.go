// Package store defines the persistence interface for told
// expressions and the derivation log.
package store

import (
	"context"
	"time"
)

// Kind distinguishes the two expression categories a knowledge base
// accepts.
type Kind string

const (
	KindFact Kind = "fact"
	KindRule Kind = "rule"
)

// Entry is one persisted expression. Seq preserves tell order so a
// replay reproduces the same sequence of chaining passes.
type Entry struct {
	Seq        int64
	Kind       Kind
	Expression string
	ToldAt     time.Time
}

// Derivation is one persisted rule firing.
type Derivation struct {
	ID      string
	Rule    string
	Matched []string
	Derived string
	At      time.Time
}

// Store persists told expressions and derivations.
type Store interface {
	Close() error

	// Expressions
	AppendExpression(ctx context.Context, expr string, kind Kind) error
	ListExpressions(ctx context.Context) ([]Entry, error)

	// Derivation log
	RecordDerivation(ctx context.Context, d Derivation) error
	ListDerivations(ctx context.Context, rule string) ([]Derivation, error)
}
