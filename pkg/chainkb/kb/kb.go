// Package kb implements the knowledge base: expression-keyed fact and
// rule sets plus the forward-chaining pass that runs on every insert.
package kb

import (
	"sort"
	"strings"
	"sync"

	"github.com/cognicore/chainkb/pkg/chainkb/logic"
)

// Derived is one fact produced by the forward-chaining pass, with the
// rule that produced it and the expressions of the facts that
// satisfied the rule's antecedents.
type Derived struct {
	Fact    logic.Fact
	Rule    string
	Matched []string
}

// KnowledgeBase owns the fact and rule sets. Both are keyed by exact
// expression text and grow monotonically; there is no retraction.
// All operations are safe for concurrent use: a whole Tell, including
// the chaining pass, runs under the write lock.
type KnowledgeBase struct {
	mu    sync.RWMutex
	facts map[string]logic.Fact
	rules map[string]logic.Implication
}

// New creates an empty knowledge base.
func New() *KnowledgeBase {
	return &KnowledgeBase{
		facts: make(map[string]logic.Fact),
		rules: make(map[string]logic.Implication),
	}
}

// Tell inserts an expression, a rule if it contains "=>" and a fact
// otherwise, then runs exactly one chaining pass: every stored rule
// is evaluated once against the fact set as it stands after the
// insert, and whatever the evaluations produce is absorbed. Facts
// derived during the pass do not feed back into the same pass; a
// derivation that depends on another derivation needs a later Tell
// (of any expression) to trigger the next pass.
//
// Telling an already-known expression is a no-op insert but still
// triggers a pass. The newly derived facts, if any, are returned.
func (kb *KnowledgeBase) Tell(expr string) ([]Derived, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if strings.Contains(expr, "=>") {
		imp, err := logic.ParseImplication(expr)
		if err != nil {
			return nil, err
		}
		kb.rules[imp.Expression] = imp
	} else {
		f, err := logic.ParseFact(expr)
		if err != nil {
			return nil, err
		}
		kb.facts[f.Expression] = f
	}

	return kb.chainOnce(), nil
}

// chainOnce evaluates every rule once against a snapshot of the
// current fact set and inserts what they derive. Caller holds the
// write lock.
func (kb *KnowledgeBase) chainOnce() []Derived {
	snapshot := make([]logic.Fact, 0, len(kb.facts))
	for _, f := range kb.facts {
		snapshot = append(snapshot, f)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Expression < snapshot[j].Expression
	})

	rules := make([]logic.Implication, 0, len(kb.rules))
	for _, r := range kb.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Expression < rules[j].Expression
	})

	var out []Derived
	for _, r := range rules {
		derived, matched, ok := r.Evaluate(snapshot)
		if !ok {
			continue
		}
		if _, known := kb.facts[derived.Expression]; known {
			continue
		}
		kb.facts[derived.Expression] = derived

		inputs := make([]string, len(matched))
		for i, m := range matched {
			inputs[i] = m.Expression
		}
		out = append(out, Derived{
			Fact:    derived,
			Rule:    r.Expression,
			Matched: inputs,
		})
	}
	return out
}

// Ask parses the query as a fact and returns every stored fact
// expression sharing its predicate, sorted. The query's own arguments
// are not used for filtering: Grandparent(ANN,z) and
// Grandparent(x,y) return the same answers.
func (kb *KnowledgeBase) Ask(query string) ([]string, error) {
	q, err := logic.ParseFact(query)
	if err != nil {
		return nil, err
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	var out []string
	for expr, f := range kb.facts {
		if f.Predicate == q.Predicate {
			out = append(out, expr)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Display returns every stored fact expression, sorted.
func (kb *KnowledgeBase) Display() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	out := make([]string, 0, len(kb.facts))
	for expr := range kb.facts {
		out = append(out, expr)
	}
	sort.Strings(out)
	return out
}

// Rules returns every stored rule expression, sorted.
func (kb *KnowledgeBase) Rules() []string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	out := make([]string, 0, len(kb.rules))
	for expr := range kb.rules {
		out = append(out, expr)
	}
	sort.Strings(out)
	return out
}

// FactCount returns the number of stored facts.
func (kb *KnowledgeBase) FactCount() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.facts)
}

// RuleCount returns the number of stored rules.
func (kb *KnowledgeBase) RuleCount() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.rules)
}
