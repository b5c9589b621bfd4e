// Package logic holds the term model of the knowledge base: facts
// (a predicate applied to an ordered argument list) and implications
// (conjunctive rules that derive one new fact).
//
// An argument token is a variable iff it is exactly one lowercase
// ASCII letter; every other token is a constant. The classification
// is purely syntactic, there is no declaration of variables anywhere.
package logic

import (
	"fmt"
	"strings"

	"github.com/cognicore/chainkb/pkg/chainkb/internalerr"
)

// Fact is a predicate applied to arguments, e.g. Mother(ANN,BOB).
// Its identity is the exact expression text: two facts are the same
// fact iff their expressions are equal, so P(a,b) and P(b,a) are
// distinct. Facts are immutable once parsed.
type Fact struct {
	Expression string
	Predicate  string
	Params     []string
}

// IsVariable reports whether an argument token is a variable:
// exactly one lowercase ASCII letter.
func IsVariable(tok string) bool {
	return len(tok) == 1 && tok[0] >= 'a' && tok[0] <= 'z'
}

// ParseFact parses "Pred(arg1,arg2,...)" into a Fact.
//
// The grammar is deliberately flat: a letter-or-~ predicate, one pair
// of parentheses, comma-separated argument tokens. Nested parentheses,
// zero arities and empty argument tokens are rejected with
// internalerr.ErrMalformedExpression.
func ParseFact(expr string) (Fact, error) {
	open := strings.Index(expr, "(")
	if open == -1 {
		return Fact{}, fmt.Errorf("%w: missing '(' in %q", internalerr.ErrMalformedExpression, expr)
	}

	predicate := strings.TrimSpace(expr[:open])
	if predicate == "" {
		return Fact{}, fmt.Errorf("%w: missing predicate in %q", internalerr.ErrMalformedExpression, expr)
	}
	for _, r := range predicate {
		if r == '~' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return Fact{}, fmt.Errorf("%w: bad predicate %q in %q", internalerr.ErrMalformedExpression, predicate, expr)
	}

	rest := expr[open+1:]
	closing := strings.Index(rest, ")")
	if closing == -1 {
		return Fact{}, fmt.Errorf("%w: missing ')' in %q", internalerr.ErrMalformedExpression, expr)
	}
	if strings.TrimSpace(rest[closing+1:]) != "" {
		return Fact{}, fmt.Errorf("%w: trailing text after ')' in %q", internalerr.ErrMalformedExpression, expr)
	}

	args := rest[:closing]
	if strings.ContainsAny(args, "()") {
		return Fact{}, fmt.Errorf("%w: nested parentheses in %q", internalerr.ErrMalformedExpression, expr)
	}

	parts := strings.Split(args, ",")
	params := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Fact{}, fmt.Errorf("%w: empty argument in %q", internalerr.ErrMalformedExpression, expr)
		}
		params[i] = p
	}

	return Fact{
		Expression: expr,
		Predicate:  predicate,
		Params:     params,
	}, nil
}

// Constants returns, per argument position, the constant token or ""
// where the position holds a variable.
func (f Fact) Constants() []string {
	out := make([]string, len(f.Params))
	for i, p := range f.Params {
		if !IsVariable(p) {
			out[i] = p
		}
	}
	return out
}

// Variables returns, per argument position, the variable token or ""
// where the position holds a constant.
func (f Fact) Variables() []string {
	out := make([]string, len(f.Params))
	for i, p := range f.Params {
		if IsVariable(p) {
			out[i] = p
		}
	}
	return out
}

// Grounded reports whether at least one argument is a constant.
//
// Note the narrow definition: a fact with any constant at all counts
// as grounded, not only a fact whose every argument is a constant.
// Rule firing gates on this.
func (f Fact) Grounded() bool {
	for _, p := range f.Params {
		if !IsVariable(p) {
			return true
		}
	}
	return false
}

// Substitute rewrites the variable positions left to right, popping
// one replacement value off the front of values per variable.
// Constant positions pass through unchanged, as do any variables left
// over once values runs out. The receiver is not modified.
func (f Fact) Substitute(values []string) Fact {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		if IsVariable(p) && len(values) > 0 {
			params[i] = values[0]
			values = values[1:]
		} else {
			params[i] = p
		}
	}
	expr := f.Predicate + "(" + strings.Join(params, ",") + ")"
	return Fact{
		Expression: expr,
		Predicate:  f.Predicate,
		Params:     params,
	}
}

// String returns the canonical rendering predicate(arg1,...,argn).
// For well-formed input this round-trips with the parsed expression.
func (f Fact) String() string {
	return f.Predicate + "(" + strings.Join(f.Params, ",") + ")"
}
