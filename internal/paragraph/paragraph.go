// Package paragraph turns corpus text into the target word sequences the
// aligner scores against.
//
// A Paragraph is built once from a plain-text string: the text is split on
// whitespace and every token becomes a [align.Word] carrying its authored
// form, its normalized comparison form, and its pronunciation hint. The word
// count is fixed for the lifetime of the paragraph; only the per-word
// verdicts change between attempts.
package paragraph

import (
	"strings"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/hint"
	"github.com/ecantero/habla/internal/text"
)

// Paragraph is one practice text plus its derived target words.
type Paragraph struct {
	// Text is the paragraph exactly as authored.
	Text string

	words []align.Word
}

// New builds a Paragraph from raw text. Each whitespace-delimited token
// becomes one target word with its normalized form and hint precomputed.
// All verdicts start Neutral.
func New(raw string) *Paragraph {
	fields := strings.Fields(raw)
	words := make([]align.Word, len(fields))
	for i, f := range fields {
		normalized := text.Normalize(f)
		words[i] = align.Word{
			Original:   f,
			Normalized: normalized,
			Hint:       hint.For(normalized),
			Status:     align.Neutral,
		}
	}
	return &Paragraph{Text: raw, words: words}
}

// Words returns the target words. The returned slice is the paragraph's own
// backing storage — callers that score an attempt should pass it through
// [align.Aligner.Align] and store the result back with [Paragraph.SetWords].
func (p *Paragraph) Words() []align.Word {
	return p.words
}

// SetWords replaces the per-word verdicts after a scoring pass. The new
// slice must have the same length as the paragraph; mismatched lengths are
// ignored because the word count is fixed at load time.
func (p *Paragraph) SetWords(words []align.Word) {
	if len(words) != len(p.words) {
		return
	}
	p.words = words
}

// Len returns the fixed number of target words.
func (p *Paragraph) Len() int {
	return len(p.words)
}

// Reset returns every verdict to Neutral, the state a new recording attempt
// starts from.
func (p *Paragraph) Reset() {
	for i := range p.words {
		p.words[i].Status = align.Neutral
	}
}
