package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FallbackRuleName is reported when no topic rule matched and keywords were
// derived from the question text itself.
const FallbackRuleName = "question_words"

const minFallbackWordLen = 5

// Rule maps topic markers found in a question to the keywords expected in an answer.
// A rule matches when the lowercased question contains every AllOf marker and,
// if AnyOf is not empty, at least one AnyOf marker.
type Rule struct {
	Name     string
	AllOf    []string
	AnyOf    []string
	Keywords []string
}

// Match reports whether the lowercased question text satisfies the rule.
func (r Rule) Match(question string) bool {
	if len(r.AllOf) == 0 && len(r.AnyOf) == 0 {
		return false
	}
	for _, marker := range r.AllOf {
		if !strings.Contains(question, marker) {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, marker := range r.AnyOf {
		if strings.Contains(question, marker) {
			return true
		}
	}
	return false
}

// Rules is evaluated in order; the first matching rule wins.
type Rules []Rule

// DefaultRules returns the built-in topic rules.
func DefaultRules() Rules {
	return Rules{
		{
			Name:     "javascript_scoping",
			AllOf:    []string{"javascript"},
			AnyOf:    []string{"var", "let"},
			Keywords: []string{"scope", "hoisting", "function-scoped", "block-scoped", "let", "const"},
		},
		{
			Name:     "react_state",
			AllOf:    []string{"react"},
			AnyOf:    []string{"state", "props"},
			Keywords: []string{"usestate", "hook", "re-render", "component", "props", "immutable", "virtual dom"},
		},
		{
			Name:     "promises",
			AllOf:    []string{"promise"},
			Keywords: []string{"async", "await", "then", "catch", "pending", "fulfilled", "rejected", "callback"},
		},
		{
			Name:     "http_api",
			AnyOf:    []string{"api", "rest"},
			Keywords: []string{"http", "get", "post", "put", "delete", "endpoint", "json", "status code", "header"},
		},
		{
			Name:     "databases",
			AllOf:    []string{"database"},
			AnyOf:    []string{"sql", "nosql"},
			Keywords: []string{"relational", "non-relational", "schema", "query", "scalability", "document", "mongodb", "postgresql"},
		},
	}
}

// Match returns the first rule matching the lowercased question text.
func (rs Rules) Match(question string) (Rule, bool) {
	for _, rule := range rs {
		if rule.Match(question) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Keywords resolves the keyword set for a lowercased question text. When no rule
// matches, words longer than four characters are taken from the question itself.
func (rs Rules) Keywords(question string) (string, []string) {
	if rule, ok := rs.Match(question); ok {
		return rule.Name, rule.Keywords
	}
	return FallbackRuleName, QuestionWords(question)
}

// QuestionWords splits on whitespace, punctuation and symbols and returns the distinct words longer than
// four characters, in first-seen order. Hyphens and apostrophes inside words are kept.
func QuestionWords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == '\'' {
			return r
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, strings.ToLower(text))

	seen := make(map[string]struct{})
	words := make([]string, 0)
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, "-'")
		if utf8.RuneCountInString(word) < minFallbackWordLen {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}
