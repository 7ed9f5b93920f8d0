// Package align scores a spoken attempt against a target word sequence.
//
// The aligner walks the target words in order while keeping a single
// forward-only cursor into the recognized transcript. Each target examines a
// bounded lookahead window of unconsumed spoken words and takes the first
// candidate that clears the correct threshold — a deliberately greedy policy
// that tolerates the recognizer dropping or re-segmenting words without ever
// matching one spoken word to two targets. The cost is that a speaker who
// reorders words can cascade misalignment; that trade-off is accepted.
package align

import (
	"math"
	"strings"

	"github.com/ecantero/habla/internal/score"
	"github.com/ecantero/habla/internal/text"
)

const (
	defaultWindowSize       = 5
	defaultCorrectThreshold = 0.85
	defaultCloseThreshold   = 0.5
)

// Band is the coarse summary tier derived from an attempt score. It is
// informational feedback only and never feeds back into per-word verdicts.
type Band string

const (
	BandExcellent Band = "excellent"  // score >= 90
	BandGood      Band = "good"       // 70 <= score < 90
	BandNeedsWork Band = "needs work" // score < 70
)

// BandFor returns the feedback band for an attempt score.
func BandFor(scorePercent int) Band {
	switch {
	case scorePercent >= 90:
		return BandExcellent
	case scorePercent >= 70:
		return BandGood
	default:
		return BandNeedsWork
	}
}

// Summary is the aggregate result of one scoring pass.
type Summary struct {
	// Score is the percentage of target words judged Correct, rounded to
	// the nearest integer. Always in [0, 100].
	Score int

	// Band is the feedback tier for Score.
	Band Band

	// Evaluated is false when the transcript was empty or whitespace-only
	// and the attempt was therefore not scored at all.
	Evaluated bool

	// Per-verdict counts over the target words.
	Correct int
	Close   int
	Poor    int
}

// Option is a functional option for configuring an [Aligner].
type Option func(*Aligner)

// WithWindowSize sets how many unconsumed spoken words each target may
// examine. Values below 1 are ignored. Default: 5.
func WithWindowSize(n int) Option {
	return func(a *Aligner) {
		if n >= 1 {
			a.window = n
		}
	}
}

// WithCorrectThreshold sets the similarity a candidate must exceed for a
// Correct verdict. Default: 0.85.
func WithCorrectThreshold(threshold float64) Option {
	return func(a *Aligner) {
		a.correctThreshold = threshold
	}
}

// WithCloseThreshold sets the similarity a candidate must exceed for a
// Close verdict. Default: 0.5.
func WithCloseThreshold(threshold float64) Option {
	return func(a *Aligner) {
		a.closeThreshold = threshold
	}
}

// Aligner matches recognized transcripts against target word sequences.
// It holds only configuration, so a single Aligner is safe for concurrent
// use across any number of sessions.
type Aligner struct {
	window           int
	correctThreshold float64
	closeThreshold   float64
}

// New returns an [Aligner] configured with the supplied options. Defaults
// are a 5-word lookahead window, 0.85 correct threshold, and 0.5 close
// threshold.
func New(opts ...Option) *Aligner {
	a := &Aligner{
		window:           defaultWindowSize,
		correctThreshold: defaultCorrectThreshold,
		closeThreshold:   defaultCloseThreshold,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Align scores rawTranscript against targets and returns a copy of targets
// with one fresh verdict per word, plus the attempt [Summary].
//
// An empty or whitespace-only transcript is the defined soft failure: the
// input slice is returned as-is (prior verdicts untouched) and the summary
// reports Evaluated=false. Align never mutates its input and has no other
// failure mode.
func (a *Aligner) Align(targets []Word, rawTranscript string) ([]Word, Summary) {
	if strings.TrimSpace(rawTranscript) == "" {
		return targets, Summary{Evaluated: false}
	}

	spoken := tokenize(rawTranscript)

	out := make([]Word, len(targets))
	copy(out, targets)

	spokenIndex := 0
	var correct, approx, poor int

	for i := range out {
		verdict, consumedThrough := a.judge(out[i].Normalized, spoken, spokenIndex)
		out[i].Status = verdict

		switch verdict {
		case Correct:
			correct++
		case Close:
			approx++
		default:
			poor++
		}

		// Only a match consumes spoken words; a Poor target leaves the
		// cursor where it is so the next target sees the same window.
		if verdict == Correct || verdict == Close {
			spokenIndex = consumedThrough + 1
		}
	}

	summary := Summary{
		Evaluated: true,
		Correct:   correct,
		Close:     approx,
		Poor:      poor,
	}
	if len(out) > 0 {
		summary.Score = int(math.Round(100 * float64(correct) / float64(len(out))))
	}
	summary.Band = BandFor(summary.Score)
	return out, summary
}

// judge scans the lookahead window starting at start and returns the verdict
// for one target together with the index of the matched spoken word. The
// returned index is meaningful only when the verdict is Correct or Close.
//
// The scan is greedy: the first candidate above the correct threshold wins
// immediately, even if a later candidate in the window would score higher.
// A close candidate is remembered but the scan continues, since a correct
// match further into the window still takes precedence.
func (a *Aligner) judge(target string, spoken []string, start int) (Verdict, int) {
	end := start + a.window
	if end > len(spoken) {
		end = len(spoken)
	}

	verdict := Poor
	matched := -1

	for j := start; j < end; j++ {
		s := score.Similarity(target, spoken[j])
		if s > a.correctThreshold {
			return Correct, j
		}
		if s > a.closeThreshold && verdict != Close {
			verdict = Close
			matched = j
		}
	}
	return verdict, matched
}

// tokenize splits a raw transcript on whitespace runs and normalizes each
// token. Empty tokens cannot occur (strings.Fields never produces them),
// but normalization may shrink a token to "" — such tokens stay in the
// sequence and simply never score above the close threshold.
func tokenize(rawTranscript string) []string {
	fields := strings.Fields(rawTranscript)
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = text.Normalize(f)
	}
	return tokens
}
