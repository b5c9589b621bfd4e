// Package derive records provenance for forward-chained facts.
package derive

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Derivation is one firing of a rule: which rule, which fact
// expressions satisfied its antecedents, and what it produced.
type Derivation struct {
	ID      string
	Rule    string
	Matched []string
	Derived string
	At      time.Time
}

// Recorder stamps derivations with monotonic ULIDs so the provenance
// trail sorts in firing order.
type Recorder struct {
	entropy *ulid.MonotonicEntropy
}

// NewRecorder creates a recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Record builds a stamped derivation.
func (r *Recorder) Record(rule string, matched []string, derived string) Derivation {
	return Derivation{
		ID:      ulid.MustNew(ulid.Now(), r.entropy).String(),
		Rule:    rule,
		Matched: append([]string(nil), matched...),
		Derived: derived,
		At:      time.Now().UTC(),
	}
}
