// Package textvec provides TF-IDF vectorization and cosine similarity over short
// free-text documents such as job postings and candidate profiles.
package textvec

import (
	"strings"
	"unicode"
)

// minTokenRunes is the shortest run of word characters kept as a token.
const minTokenRunes = 2

// Tokenize lowercases text and splits it into runs of word characters
// (letters, digits and underscore). Combining marks are not word characters.
// Runs shorter than two characters are discarded. Stop words are not removed
// here.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	tokens := make([]string, 0, 8)

	start := -1
	runes := 0
	flush := func(end int) {
		if start >= 0 && runes >= minTokenRunes {
			tokens = append(tokens, lower[start:end])
		}
		start = -1
		runes = 0
	}

	for i, r := range lower {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(lower))

	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// SplitList splits a comma-separated list, trimming whitespace and dropping
// empty entries. "excel, , bookkeeping" yields ["excel", "bookkeeping"].
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
