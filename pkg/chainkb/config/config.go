// Package config loads rulebases: the facts and rules a knowledge
// base is seeded with before a session starts.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/chainkb/pkg/chainkb/internalerr"
	"github.com/cognicore/chainkb/pkg/chainkb/logic"
)

// Rulebase is a YAML rulebase file:
//
//	facts:
//	  - Mother(ANN,BOB)
//	rules:
//	  - Mother(x,y)&Father(y,z) => Grandparent(x,z)
type Rulebase struct {
	Facts []string `yaml:"facts"`
	Rules []string `yaml:"rules"`
}

// LoadRulebase loads and validates a YAML rulebase.
func LoadRulebase(path string) (*Rulebase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rb Rulebase
	if err := yaml.Unmarshal(data, &rb); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}

	for i, f := range rb.Facts {
		if _, err := logic.ParseFact(f); err != nil {
			return nil, fmt.Errorf("facts[%d]: %w", i, err)
		}
	}
	for i, r := range rb.Rules {
		if _, err := logic.ParseImplication(r); err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
	}

	return &rb, nil
}

// Expressions returns the rulebase contents in tell order: facts
// first, then rules.
func (rb *Rulebase) Expressions() []string {
	out := make([]string, 0, len(rb.Facts)+len(rb.Rules))
	out = append(out, rb.Facts...)
	out = append(out, rb.Rules...)
	return out
}

// LoadExpressionsFile loads a plain-text expression file, one fact or
// rule per line. Blank lines and # comments are skipped. Expressions
// are validated; the first bad line fails the whole load.
func LoadExpressionsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "=>") {
			_, err = logic.ParseImplication(line)
		} else {
			_, err = logic.ParseFact(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
