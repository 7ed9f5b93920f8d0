// Package score computes the normalized word similarity used by the
// transcript aligner.
//
// Similarity is the classic Levenshtein ratio: 1 minus the edit distance
// divided by the longer word's rune length. Distances come from
// github.com/antzucaro/matchr, which operates on runes, so accented vowels
// count as single characters on both sides of the comparison.
package score

import (
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Similarity returns a value in [0, 1] describing how close b is to a.
// 1 means the strings are identical; 0 means every character differs.
//
// Comparison is case-sensitive and exact per character — callers normalize
// both sides first. Two empty strings are defined as identical (1.0); the
// zero max-length case is handled explicitly so the ratio never divides by
// zero, even though normal paragraph and transcript data cannot reach it.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := matchr.Levenshtein(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
