// Package text provides the canonical comparison form for practice words.
//
// Target words and recognized transcript tokens both pass through [Normalize]
// before any similarity scoring, so the two sides always compare in the same
// form: lower-case, punctuation-stripped, accents and digits intact.
package text

import "strings"

// punctuation is the fixed set of characters removed by [Normalize].
// Question and exclamation openers (¿¡) are not in the set on purpose: the
// corpus paragraphs never carry them mid-word and the recognizer never emits
// them, so stripping stays cheap and predictable.
const punctuation = ".,/#!$%^&*;:{}()-_`~"

// Normalize lowers word and removes every rune in the fixed punctuation set.
// Letters (including accented vowels and ñ) and digits pass through
// untouched.
//
// Normalize is pure and total: any string input, including the empty string,
// produces a defined result. It is also idempotent, which matters because
// target words are normalized once at paragraph load and transcript tokens
// once per scoring pass.
func Normalize(word string) string {
	lower := strings.ToLower(word)
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, lower)
}
