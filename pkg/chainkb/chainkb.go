// Package chainkb is a forward-chaining knowledge base. Callers tell
// it facts like Mother(ANN,BOB) and rules like
// Mother(x,y)&Father(y,z) => Grandparent(x,z); every tell runs one
// chaining pass that matches rule antecedents against the stored
// facts and absorbs whatever the rules derive.
package chainkb

import (
	"context"
	"strings"
	"sync"

	"github.com/cognicore/chainkb/pkg/chainkb/derive"
	"github.com/cognicore/chainkb/pkg/chainkb/kb"
	"github.com/cognicore/chainkb/pkg/chainkb/store"
)

// Engine is the main knowledge base facade: the in-memory KB plus an
// optional persistent store and the derivation log.
type Engine struct {
	mu  sync.Mutex
	kb  *kb.KnowledgeBase
	st  store.Store
	rec *derive.Recorder
	log []derive.Derivation
}

// Options configures an Engine.
type Options struct {
	// Store persists told expressions and derivations. Nil means the
	// engine is purely in-memory.
	Store store.Store
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	return &Engine{
		kb:  kb.New(),
		st:  opts.Store,
		rec: derive.NewRecorder(),
	}
}

// Close cleanly shuts down the engine.
func (e *Engine) Close() error {
	if e.st == nil {
		return nil
	}
	return e.st.Close()
}

// Load replays the persisted expressions, in stored order, into the
// in-memory KB. Chaining reruns deterministically during the replay,
// so derived facts are reconstructed rather than stored; replayed
// derivations are not re-persisted. No-op without a store.
func (e *Engine) Load(ctx context.Context) error {
	if e.st == nil {
		return nil
	}

	entries, err := e.st.ListExpressions(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, entry := range entries {
		derivations, err := e.kb.Tell(entry.Expression)
		if err != nil {
			return err
		}
		for _, d := range derivations {
			e.log = append(e.log, e.rec.Record(d.Rule, d.Matched, d.Fact.Expression))
		}
	}
	return nil
}

// Tell inserts an expression and runs one chaining pass. The derived
// fact expressions, if any, are returned. With a store attached, the
// told expression and every derivation are persisted before Tell
// returns.
func (e *Engine) Tell(ctx context.Context, expr string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	derivations, err := e.kb.Tell(expr)
	if err != nil {
		return nil, err
	}

	if e.st != nil {
		kind := store.KindFact
		if strings.Contains(expr, "=>") {
			kind = store.KindRule
		}
		if err := e.st.AppendExpression(ctx, expr, kind); err != nil {
			return nil, err
		}
	}

	var out []string
	for _, d := range derivations {
		rec := e.rec.Record(d.Rule, d.Matched, d.Fact.Expression)
		e.log = append(e.log, rec)
		if e.st != nil {
			if err := e.st.RecordDerivation(ctx, store.Derivation{
				ID:      rec.ID,
				Rule:    rec.Rule,
				Matched: rec.Matched,
				Derived: rec.Derived,
				At:      rec.At,
			}); err != nil {
				return nil, err
			}
		}
		out = append(out, d.Fact.Expression)
	}
	return out, nil
}

// Ask returns every stored fact whose predicate matches the query's
// predicate. The query's arguments play no part in the filtering.
func (e *Engine) Ask(query string) ([]string, error) {
	return e.kb.Ask(query)
}

// Display returns every stored fact expression.
func (e *Engine) Display() []string {
	return e.kb.Display()
}

// Rules returns every stored rule expression.
func (e *Engine) Rules() []string {
	return e.kb.Rules()
}

// Derivations returns the session's derivation log in firing order,
// optionally filtered to one rule. An empty rule matches everything.
func (e *Engine) Derivations(rule string) []derive.Derivation {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []derive.Derivation
	for _, d := range e.log {
		if rule != "" && d.Rule != rule {
			continue
		}
		out = append(out, d)
	}
	return out
}
