package align

// Verdict classifies how well a single target word was pronounced in the
// most recent attempt. The four values are exhaustive and mutually
// exclusive: a word is Neutral before and during an attempt, and exactly one
// of the other three after a scoring pass.
type Verdict int

const (
	// Neutral is the pre-attempt state. A scoring pass never emits it.
	Neutral Verdict = iota

	// Correct means a spoken word in the lookahead window exceeded the
	// correct threshold.
	Correct

	// Close means the best in-window candidate cleared the close threshold
	// but never the correct one.
	Close

	// Poor means the window was exhausted without any acceptable candidate.
	Poor
)

// String returns the lower-case name of the verdict.
func (v Verdict) String() string {
	switch v {
	case Neutral:
		return "neutral"
	case Correct:
		return "correct"
	case Close:
		return "close"
	case Poor:
		return "poor"
	}
	return "unknown"
}

// Word is one target word of a practice paragraph. Original keeps the text
// exactly as authored (punctuation included) for display and playback;
// Normalized is the comparison form fed to the scorer; Hint is the
// pronunciation cue shown to the learner.
//
// Status is the only field that changes after load, and only through
// [Aligner.Align] or a verdict reset at the start of an attempt.
type Word struct {
	Original   string
	Normalized string
	Hint       string
	Status     Verdict
}
