// Package common holds helpers shared by the extraction services.
package common

import (
	"regexp"
	"strings"
)

// =============================================================================
// Ordered Rules
// =============================================================================

// Rule pairs a predicate with the result it yields when matched.
type Rule[T any] struct {
	Name   string
	Match  func(text string) bool
	Result T
}

// RuleList is evaluated in order; the first matching rule wins.
type RuleList[T any] struct {
	Rules   []Rule[T]
	Default T
}

// Evaluate returns the result of the first matching rule, or Default.
func (l RuleList[T]) Evaluate(text string) T {
	r, _ := l.Match(text)
	return r
}

// Match is Evaluate plus the name of the rule that fired ("" for the default).
func (l RuleList[T]) Match(text string) (T, string) {
	for _, r := range l.Rules {
		if r.Match(text) {
			return r.Result, r.Name
		}
	}
	return l.Default, ""
}

// Pattern matches when re finds anything in the text.
func Pattern(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

// ContainsAny matches case-insensitively when any keyword is a substring of
// the text.
func ContainsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		lower := strings.ToLower(text)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
}

// Keywords builds a case-insensitive alternation matcher, e.g.
// Keywords("invoice", "payment") ~ /invoice|payment/i.
func Keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}
