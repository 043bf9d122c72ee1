package inipatch

import (
	"fmt"
	"regexp"
)

// Rule rewrites a line matched by Pattern. Literal rules replace the whole
// line with Replacement; other rules substitute with
// Pattern.ReplaceAllString, so $1-style captures carry text over from the
// original line.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
	Literal     bool
}

// Substitute builds a capture-substitution rule.
func Substitute(pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compiling rule %q: %w", pattern, err)
	}
	return Rule{Pattern: re, Replacement: replacement}, nil
}

// SetLine builds a whole-line replacement rule.
func SetLine(pattern, line string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compiling rule %q: %w", pattern, err)
	}
	return Rule{Pattern: re, Replacement: line, Literal: true}, nil
}

// Matches reports whether the rule applies to line.
func (r Rule) Matches(line string) bool {
	return r.Pattern.MatchString(line)
}

// Rewrite returns the rewritten line. Callers check Matches first.
func (r Rule) Rewrite(line string) string {
	if r.Literal {
		return r.Replacement
	}
	return r.Pattern.ReplaceAllString(line, r.Replacement)
}

func (r Rule) String() string {
	if r.Literal {
		return fmt.Sprintf("%s => %q", r.Pattern, r.Replacement)
	}
	return fmt.Sprintf("%s ~> %q", r.Pattern, r.Replacement)
}

// Apply rewrites lines with first-match-wins semantics. The result has the
// same length and order as lines.
func Apply(lines []string, rules []Rule) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = applyLine(line, rules)
	}
	return out
}

func applyLine(line string, rules []Rule) string {
	if i := firstMatch(line, rules); i >= 0 {
		return rules[i].Rewrite(line)
	}
	return line
}

func firstMatch(line string, rules []Rule) int {
	for i, r := range rules {
		if r.Matches(line) {
			return i
		}
	}
	return -1
}

// NonIdempotent returns the indices of rules whose output would be rewritten
// again on a second pass. A rule is re-run on its output for every line it
// wins in lines and, for literal rules, on its replacement text.
func NonIdempotent(rules []Rule, lines []string) []int {
	var bad []int
	for i, r := range rules {
		var outputs []string
		if r.Literal {
			outputs = append(outputs, r.Replacement)
		}
		for _, line := range lines {
			if firstMatch(line, rules) == i {
				outputs = append(outputs, r.Rewrite(line))
			}
		}
		for _, out := range outputs {
			if applyLine(out, rules) != out {
				bad = append(bad, i)
				break
			}
		}
	}
	return bad
}
