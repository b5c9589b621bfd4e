package kb

import (
	"errors"
	"testing"

	"github.com/cognicore/chainkb/pkg/chainkb/internalerr"
)

func tell(t *testing.T, kb *KnowledgeBase, exprs ...string) {
	t.Helper()
	for _, expr := range exprs {
		if _, err := kb.Tell(expr); err != nil {
			t.Fatalf("Tell(%q): %v", expr, err)
		}
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestGrandparentDerivation(t *testing.T) {
	kb := New()
	tell(t, kb,
		"Mother(ANN,BOB)",
		"Father(BOB,CARL)",
		"Mother(x,y)&Father(y,z) => Grandparent(x,z)",
	)

	if !contains(kb.Display(), "Grandparent(ANN,CARL)") {
		t.Errorf("expected Grandparent(ANN,CARL) in %v", kb.Display())
	}
}

func TestTellIsIdempotent(t *testing.T) {
	kb := New()
	tell(t, kb, "Mother(ANN,BOB)", "Mother(ANN,BOB)")

	if kb.FactCount() != 1 {
		t.Errorf("FactCount: got %d, want 1", kb.FactCount())
	}
}

func TestDuplicatesByExpressionOnly(t *testing.T) {
	kb := New()
	// Reordered argument lists are distinct facts
	tell(t, kb, "P(a1,b1)", "P(b1,a1)")

	if kb.FactCount() != 2 {
		t.Errorf("FactCount: got %d, want 2", kb.FactCount())
	}
}

func TestNoDerivationWithoutFullMatch(t *testing.T) {
	kb := New()
	tell(t, kb,
		"Mother(x,y)&Father(y,z) => Grandparent(x,z)",
		"Mother(ANN,BOB)",
	)

	for _, expr := range kb.Display() {
		if expr != "Mother(ANN,BOB)" {
			t.Errorf("unexpected fact %q", expr)
		}
	}
}

func TestAskFiltersByPredicateOnly(t *testing.T) {
	kb := New()
	tell(t, kb,
		"Grandparent(ANN,CARL)",
		"Grandparent(EVE,DAN)",
		"Mother(ANN,BOB)",
	)

	// The query's own arguments are ignored; only the predicate counts.
	matches, err := kb.Ask("Grandparent(NOBODY,q)")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Ask: got %d matches, want 2: %v", len(matches), matches)
	}
	if !contains(matches, "Grandparent(ANN,CARL)") || !contains(matches, "Grandparent(EVE,DAN)") {
		t.Errorf("Ask: got %v", matches)
	}
}

func TestAskMalformedQuery(t *testing.T) {
	kb := New()
	if _, err := kb.Ask("not an expression"); !errors.Is(err, internalerr.ErrMalformedExpression) {
		t.Errorf("Ask: got %v, want ErrMalformedExpression", err)
	}
}

func TestTellMalformedExpression(t *testing.T) {
	kb := New()
	if _, err := kb.Tell("Mother(ANN"); !errors.Is(err, internalerr.ErrMalformedExpression) {
		t.Errorf("Tell: got %v, want ErrMalformedExpression", err)
	}
	if _, err := kb.Tell("Mother(x,y) => "); !errors.Is(err, internalerr.ErrMalformedExpression) {
		t.Errorf("Tell rule: got %v, want ErrMalformedExpression", err)
	}
}

// One pass per Tell: a derivation that depends on another derivation
// needs a later Tell to trigger the next pass.
func TestChainedDerivationNeedsSecondTell(t *testing.T) {
	kb := New()
	tell(t, kb,
		"Mother(x,y)&Father(y,z) => Grandparent(x,z)",
		"Grandparent(x,z) => Ancestor(x,z)",
		"Mother(ANN,BOB)",
		"Father(BOB,CARL)",
	)

	facts := kb.Display()
	if !contains(facts, "Grandparent(ANN,CARL)") {
		t.Fatalf("first derivation missing: %v", facts)
	}
	if contains(facts, "Ancestor(ANN,CARL)") {
		t.Fatalf("second derivation should not appear within the same pass: %v", facts)
	}

	// Any further Tell triggers the next pass.
	tell(t, kb, "Unrelated(THING)")
	if !contains(kb.Display(), "Ancestor(ANN,CARL)") {
		t.Errorf("second derivation missing after extra Tell: %v", kb.Display())
	}
}

func TestTellReportsDerived(t *testing.T) {
	kb := New()
	tell(t, kb, "Mother(ANN,BOB)", "Father(BOB,CARL)")

	derived, err := kb.Tell("Mother(x,y)&Father(y,z) => Grandparent(x,z)")
	if err != nil {
		t.Fatalf("Tell: %v", err)
	}
	if len(derived) != 1 {
		t.Fatalf("derived: got %d, want 1", len(derived))
	}

	d := derived[0]
	if d.Fact.Expression != "Grandparent(ANN,CARL)" {
		t.Errorf("derived fact: got %q", d.Fact.Expression)
	}
	if d.Rule != "Mother(x,y)&Father(y,z) => Grandparent(x,z)" {
		t.Errorf("derived rule: got %q", d.Rule)
	}
	if len(d.Matched) != 2 {
		t.Errorf("matched: got %v", d.Matched)
	}
}

func TestDisplaySortedAndComplete(t *testing.T) {
	kb := New()
	tell(t, kb, "Zeta(ONE)", "Alpha(TWO)", "Mid(THREE)")

	facts := kb.Display()
	want := []string{"Alpha(TWO)", "Mid(THREE)", "Zeta(ONE)"}
	if len(facts) != len(want) {
		t.Fatalf("Display: got %v", facts)
	}
	for i := range want {
		if facts[i] != want[i] {
			t.Errorf("Display[%d]: got %q, want %q", i, facts[i], want[i])
		}
	}
}

func TestRulesAndCounts(t *testing.T) {
	kb := New()
	tell(t, kb,
		"Mother(ANN,BOB)",
		"Mother(x,y) => Parent(x,y)",
	)

	if kb.RuleCount() != 1 {
		t.Errorf("RuleCount: got %d, want 1", kb.RuleCount())
	}
	rules := kb.Rules()
	if len(rules) != 1 || rules[0] != "Mother(x,y) => Parent(x,y)" {
		t.Errorf("Rules: got %v", rules)
	}
	// The rule fired on insert: Mother(ANN,BOB) → Parent(ANN,BOB)
	if kb.FactCount() != 2 {
		t.Errorf("FactCount: got %d, want 2", kb.FactCount())
	}
}
