// Package matcher selects reason codes from free text: keyword containment,
// scenario pattern matching with a fuzzy fallback, and cross-network
// resolution.
package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MinKeywordLength drops stop-word noise such as "to" and "it".
const MinKeywordLength = 3

// stopWords are long enough to pass MinKeywordLength but carry no meaning
// for scoring. "not" is kept.
var stopWords = map[string]bool{
	"the": true, "and": true, "was": true, "but": true, "they": true, "for": true,
	"with": true, "this": true, "that": true, "have": true, "from": true, "are": true,
	"you": true, "your": true, "our": true, "has": true, "had": true, "his": true,
	"her": true, "its": true, "out": true, "all": true, "any": true, "been": true,
	"were": true, "after": true, "again": true, "still": true, "then": true, "than": true,
	"when": true, "what": true, "will": true, "would": true, "there": true, "their": true,
	"them": true, "into": true,
}

var stemSuffixes = []string{"ing", "ed", "es", "s"}

// Normalize folds case, applies NFKC and collapses whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits normalized text on every rune that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractKeywords returns the distinct tokens of at least MinKeywordLength
// runes, in first-seen order.
func ExtractKeywords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range Tokenize(text) {
		if utf8.RuneCountInString(tok) < MinKeywordLength || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Stem strips the first matching inflection suffix when at least three runes
// remain, so "charging", "charged" and "charges" all become "charg". Stop
// words are returned unchanged.
func Stem(token string) string {
	if stopWords[token] {
		return token
	}
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(token, suffix) && utf8.RuneCountInString(token)-len(suffix) >= MinKeywordLength {
			return strings.TrimSuffix(token, suffix)
		}
	}
	return token
}

// Terms tokenizes and stems s for fuzzy scoring.
func Terms(s string) []string {
	tokens := Tokenize(s)
	for i, t := range tokens {
		tokens[i] = Stem(t)
	}
	return tokens
}
