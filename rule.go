package srx

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Rule is a single segmentation rule.
//
// Before and After are regular expressions for the text preceding and
// following a potential break position. Both may be empty. Break tells
// whether a match denotes a break or an exception to a break. Inactive
// rules are ignored when a rule set is compiled. Note that a Rule literal
// without Active: true is inactive; NewRule creates active rules.
type Rule struct {
	Before  string
	After   string
	Break   bool
	Active  bool
	Comment string
}

// NewRule creates an active rule.
func NewRule(before, after string, isBreak bool) Rule {
	return Rule{Before: before, After: after, Break: isBreak, Active: true}
}

func (r Rule) String() string {
	kind := "break"
	if !r.Break {
		kind = "no-break"
	}
	return fmt.Sprintf("%s[%s|%s]", kind, r.Before, r.After)
}

// CompiledRule is a rule with its before and after expressions combined into
// one regular expression. Group 1 of Pattern spans the before-part, so the
// break position of a match is its start plus the length of group 1.
type CompiledRule struct {
	Pattern *regexp2.Regexp
	Break   bool
	Source  Rule
}

// CompileRule combines the before and after expressions of rule.
//
// Occurrences of AnyCode within the expressions are replaced by codePattern,
// which usually is CodesRemovedPattern or CodesPresentPattern.
// Syntax errors are returned and denote an unusable rule set.
func CompileRule(rule Rule, codePattern string) (CompiledRule, error) {
	before := substituteAnyCode(rule.Before, codePattern)
	after := substituteAnyCode(rule.After, codePattern)
	expr := "(" + before + ")"
	if after != "" {
		expr += "(?=" + after + ")"
	}
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return CompiledRule{}, fmt.Errorf("cannot compile rule %s: %w", rule, err)
	}
	return CompiledRule{Pattern: re, Break: rule.Break, Source: rule}, nil
}

// MustCompileRule is like CompileRule but panics on syntax errors.
func MustCompileRule(rule Rule, codePattern string) CompiledRule {
	c, err := CompileRule(rule, codePattern)
	if err != nil {
		panic(err)
	}
	return c
}

// breakPositions calls found for every break candidate of the rule within
// runes. The whole input is visible to lookaround at every match.
func (c CompiledRule) breakPositions(runes []rune, found func(pos int)) error {
	m, err := c.Pattern.FindRunesMatch(runes)
	for m != nil && err == nil {
		pos := m.Index
		if g := m.GroupByNumber(1); g != nil {
			pos += g.Length
		}
		found(pos)
		m, err = c.Pattern.FindNextMatch(m)
	}
	return err
}
