// Package hint generates coarse pronunciation cues for Latin-American
// Spanish words, written so an English-speaking learner can read them aloud.
//
// The generator is a fixed, ordered table of literal substitutions followed
// by a syllable-boundary pass. It is deliberately a heuristic transliteration
// and not a phonetic transcription: the rule order below is part of the
// contract and later rules see the output of earlier ones. Reordering the
// table changes observable output for words like "guerra" or "gigante".
package hint

import "strings"

// Placeholder runes keep letters introduced by earlier rules out of reach of
// the silent-h deletion rule. They never appear in real input and are
// restored before the syllable pass.
const (
	softH     = '\uE000' // an h produced by the j and soft-g rules
	hardCH    = '\uE001' // a ch digraph, whose h must not be deleted
	softHStr  = string(softH)
	hardCHStr = string(hardCH)
)

// rules is the ordered substitution table. Each entry is applied with
// strings.ReplaceAll, so an entry sees the full output of every entry above
// it. The gui/gue entries must stay below the soft-g entries: they convert
// the u-carrying digraphs to bare gi/ge only after the soft-g pass can no
// longer touch them, which is how the hard g sound survives.
var rules = [...]struct{ from, to string }{
	{"ll", "y"},
	{"ñ", "ny"},
	{"ch", hardCHStr},
	{"j", softHStr},
	{"ge", softHStr + "e"},
	{"gi", softHStr + "i"},
	{"ce", "se"},
	{"ci", "si"},
	{"gui", "gi"},
	{"gue", "ge"},
	{"qu", "k"},
	{"v", "b"},
	{"z", "s"},
	{"h", ""}, // only h's present in the source word reach this rule
}

// vowels are the syllable nuclei recognised by the boundary pass.
const vowels = "aeiouáéíóú"

// For transliterates a normalized (lower-case, punctuation-free) word into
// an upper-case pronunciation hint with hyphenated syllable boundaries.
//
// For is deterministic and total: every input, including the empty string,
// yields a defined hint. Passing a word that has not been normalized is not
// an error; unrecognised runes simply pass through the table untouched.
func For(normalizedWord string) string {
	s := normalizedWord
	for _, r := range rules {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	s = strings.ReplaceAll(s, softHStr, "h")
	s = strings.ReplaceAll(s, hardCHStr, "ch")
	return strings.ToUpper(markSyllables(s))
}

// markSyllables inserts a hyphen between every vowel and an immediately
// following rune that is neither a vowel nor whitespace. This approximates
// syllable onsets; it is not true syllabification and happily splits a
// trailing coda (e.g. "mó-n").
func markSyllables(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + len(runes)/2)
	for i, r := range runes {
		b.WriteRune(r)
		if i+1 < len(runes) && isVowel(r) && !isVowel(runes[i+1]) && !isSpace(runes[i+1]) {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func isVowel(r rune) bool {
	return strings.ContainsRune(vowels, r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
