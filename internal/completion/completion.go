// Package completion ranks tab-completion candidates from an ordered list
// of rules.
package completion

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// Context describes the line being completed.
type Context struct {
	Line   string
	Cursor int
	// Word is the text from WordStart to the cursor.
	Word      string
	WordStart int
	// FirstWord is set while the cursor is in the command name.
	FirstWord bool
	Cwd       string
	Home      string
}

// Pred selects the rules that apply to a context.
type Pred func(Context) bool

// Action lists candidates for a context. Candidates are ranked against
// Context.Word by the completer, so actions may return every name they know.
type Action func(Context) []string

// Rule pairs a predicate with the action it enables.
type Rule struct {
	Pred   Pred
	Action Action
}

// Completer evaluates rules in registration order.
type Completer struct {
	rules []Rule
}

func New() *Completer {
	return &Completer{}
}

// Register appends rule.
func (c *Completer) Register(rule Rule) {
	c.rules = append(c.rules, rule)
}

// Len returns the number of registered rules.
func (c *Completer) Len() int {
	return len(c.rules)
}

// Complete merges the candidates of every matching rule, without
// duplicates, and ranks them against the word under the cursor.
func (c *Completer) Complete(ctx Context) []string {
	if c == nil {
		return nil
	}
	seen := map[string]bool{}
	var merged []string
	for _, rule := range c.rules {
		if rule.Pred != nil && !rule.Pred(ctx) {
			continue
		}
		for _, candidate := range rule.Action(ctx) {
			if candidate == "" || seen[candidate] {
				continue
			}
			seen[candidate] = true
			merged = append(merged, candidate)
		}
	}
	return Rank(ctx.Word, merged)
}

// Rank keeps the candidates that start with word, sorted. When none do,
// candidates are ordered by fuzzy match score instead.
func Rank(word string, candidates []string) []string {
	var prefixed []string
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, word) {
			prefixed = append(prefixed, candidate)
		}
	}
	if len(prefixed) > 0 || word == "" {
		sort.Strings(prefixed)
		return prefixed
	}
	matches := fuzzy.Find(word, candidates)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Str)
	}
	return out
}

// CommonPrefix returns the longest prefix shared by all candidates. It is
// compared byte-wise and never ends inside a UTF-8 sequence of the first
// candidate; bytes that are not valid UTF-8 count as single characters.
func CommonPrefix(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	first := candidates[0]
	n := len(first)
	for _, candidate := range candidates[1:] {
		i := 0
		for i < n && i < len(candidate) && first[i] == candidate[i] {
			i++
		}
		n = i
	}
	for n > 0 && n < len(first) && !utf8.RuneStart(first[n]) {
		n--
	}
	return first[:n]
}

// CmdnamePred holds while the cursor is in the first word.
func CmdnamePred(ctx Context) bool {
	return ctx.FirstWord
}

// ArgPred holds once the cursor has left the first word.
func ArgPred(ctx Context) bool {
	return !ctx.FirstWord
}
