package logic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/chainkb/pkg/chainkb/internalerr"
)

// Separator tokens of the rule grammar.
const (
	imply   = "=>"
	conjoin = "&"
)

// Implication is a forward rule: A1(..)&A2(..) => C(..). LHS holds
// the antecedent conjuncts in textual order, RHS the consequent
// template whose arguments may contain variables. Like Fact, identity
// is the exact expression text.
type Implication struct {
	Expression string
	LHS        []Fact
	RHS        Fact
}

// ParseImplication parses "A1(..)&A2(..) => C(..)". The expression
// must contain exactly one "=>"; each side must parse as facts.
func ParseImplication(expr string) (Implication, error) {
	sides := strings.Split(expr, imply)
	if len(sides) != 2 {
		return Implication{}, fmt.Errorf("%w: expected one %q in %q", internalerr.ErrMalformedExpression, imply, expr)
	}

	conjuncts := strings.Split(sides[0], conjoin)
	lhs := make([]Fact, len(conjuncts))
	for i, c := range conjuncts {
		f, err := ParseFact(strings.TrimSpace(c))
		if err != nil {
			return Implication{}, fmt.Errorf("antecedent %d: %w", i+1, err)
		}
		lhs[i] = f
	}

	rhs, err := ParseFact(strings.TrimSpace(sides[1]))
	if err != nil {
		return Implication{}, fmt.Errorf("consequent: %w", err)
	}

	return Implication{
		Expression: expr,
		LHS:        lhs,
		RHS:        rhs,
	}, nil
}

// Bindings maps variable names to the constants they matched.
type Bindings map[string]string

// Bind records a match. The policy is last-write-wins: variable names
// are not scoped per conjunct, so a variable reused across conjuncts
// with different concrete values keeps only the value seen last.
func (b Bindings) Bind(name, value string) {
	b[name] = value
}

// names returns the bound variable names in sorted order, so that the
// textual substitution in Evaluate is deterministic.
func (b Bindings) names() []string {
	out := make([]string, 0, len(b))
	for name := range b {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Evaluate attempts one match-and-instantiate step against the given
// fact collection. It returns the derived fact, the list of facts
// that satisfied some antecedent conjunct, and whether the rule
// fired.
//
// A fact matches a conjunct on predicate alone; each match appends to
// the returned list (a fact matching several conjuncts appears once
// per conjunct, the list is not deduplicated) and binds the
// conjunct's variables to the fact's constants at the same positions.
// The rule fires only when the match count equals the antecedent
// count and every matched fact is grounded. That gate is coarse: with
// repeated predicates or partial matches it can both over-fire and
// under-fire compared to per-conjunct unification, which is the
// intended behavior here, not an oversight.
//
// Instantiation is textual: every bound variable's one-letter name is
// replaced wherever it occurs in the consequent's raw argument text,
// including inside constant names that happen to contain the letter.
func (imp Implication) Evaluate(facts []Fact) (Fact, []Fact, bool) {
	bindings := make(Bindings)
	var matched []Fact
	allGrounded := true

	for _, f := range facts {
		for _, a := range imp.LHS {
			if f.Predicate != a.Predicate {
				continue
			}
			constants := f.Constants()
			for i, v := range a.Variables() {
				if v == "" || i >= len(constants) {
					continue
				}
				bindings.Bind(v, constants[i])
			}
			matched = append(matched, f)
			if !f.Grounded() {
				allGrounded = false
			}
		}
	}

	if len(matched) != len(imp.LHS) || !allGrounded {
		return Fact{}, matched, false
	}

	args := "(" + strings.Join(imp.RHS.Params, ",") + ")"
	for _, name := range bindings.names() {
		value := bindings[name]
		if value == "" {
			continue
		}
		args = strings.ReplaceAll(args, name, value)
	}

	derived, err := ParseFact(imp.RHS.Predicate + args)
	if err != nil {
		return Fact{}, matched, false
	}
	return derived, matched, true
}

// String returns the canonical rendering of the rule.
func (imp Implication) String() string {
	conjuncts := make([]string, len(imp.LHS))
	for i, f := range imp.LHS {
		conjuncts[i] = f.String()
	}
	return strings.Join(conjuncts, conjoin) + " " + imply + " " + imp.RHS.String()
}
