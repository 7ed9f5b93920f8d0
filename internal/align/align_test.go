package align_test

import (
	"testing"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/text"
)

// targets builds a Word slice from authored words, normalizing each the way
// paragraph loading does.
func targets(words ...string) []align.Word {
	out := make([]align.Word, len(words))
	for i, w := range words {
		out[i] = align.Word{Original: w, Normalized: text.Normalize(w)}
	}
	return out
}

func verdicts(words []align.Word) []align.Verdict {
	out := make([]align.Verdict, len(words))
	for i, w := range words {
		out[i] = w.Status
	}
	return out
}

func TestAlign_EmptyTranscriptIsNoOp(t *testing.T) {
	t.Parallel()

	a := align.New()
	in := targets("hola", "mundo")
	in[0].Status = align.Correct
	in[1].Status = align.Poor

	for _, transcript := range []string{"", "   ", "\t\n"} {
		out, sum := a.Align(in, transcript)
		if sum.Evaluated {
			t.Errorf("Align(_, %q): Evaluated=true, want false", transcript)
		}
		if out[0].Status != align.Correct || out[1].Status != align.Poor {
			t.Errorf("Align(_, %q) altered prior verdicts: %v", transcript, verdicts(out))
		}
	}
}

func TestAlign_CloseThenCorrect(t *testing.T) {
	t.Parallel()

	a := align.New()
	out, sum := a.Align(targets("hola", "mundo"), "ola mundo")

	// "hola" vs "ola": distance 1 over length 4 → 0.75 → close.
	if out[0].Status != align.Close {
		t.Errorf("word %q: verdict %v, want close", "hola", out[0].Status)
	}
	if out[1].Status != align.Correct {
		t.Errorf("word %q: verdict %v, want correct", "mundo", out[1].Status)
	}
	if sum.Score != 50 {
		t.Errorf("Score = %d, want 50", sum.Score)
	}
	if !sum.Evaluated {
		t.Error("Evaluated = false, want true")
	}
}

func TestAlign_ExactMatchScoresHundred(t *testing.T) {
	t.Parallel()

	a := align.New()
	out, sum := a.Align(targets("uno", "dos", "tres"), "uno dos tres")

	for i, w := range out {
		if w.Status != align.Correct {
			t.Errorf("word %d (%q): verdict %v, want correct", i, w.Original, w.Status)
		}
	}
	if sum.Score != 100 {
		t.Errorf("Score = %d, want 100", sum.Score)
	}
	if sum.Band != align.BandExcellent {
		t.Errorf("Band = %q, want %q", sum.Band, align.BandExcellent)
	}
}

func TestAlign_SpokenWordConsumedOnce(t *testing.T) {
	t.Parallel()

	a := align.New()
	out, sum := a.Align(targets("hola", "hola"), "hola")

	if out[0].Status != align.Correct {
		t.Errorf("first target: verdict %v, want correct", out[0].Status)
	}
	// The single spoken word was consumed by the first target; the second
	// must not match it again.
	if out[1].Status != align.Poor {
		t.Errorf("second target: verdict %v, want poor", out[1].Status)
	}
	if sum.Score != 50 {
		t.Errorf("Score = %d, want 50", sum.Score)
	}
}

func TestAlign_CursorHoldsOnPoor(t *testing.T) {
	t.Parallel()

	a := align.New()
	// "murciélago" finds nothing; the cursor stays put so "sol" still sees
	// the spoken "sol".
	out, _ := a.Align(targets("murciélago", "sol"), "sol")

	if out[0].Status != align.Poor {
		t.Errorf("first target: verdict %v, want poor", out[0].Status)
	}
	if out[1].Status != align.Correct {
		t.Errorf("second target: verdict %v, want correct", out[1].Status)
	}
}

func TestAlign_CorrectLaterInWindowBeatsEarlierClose(t *testing.T) {
	t.Parallel()

	a := align.New()
	// "mando" is close (0.8) but "mundo" further in the window is exact;
	// the close verdict must be upgraded and the cursor advanced past the
	// exact match.
	out, _ := a.Align(targets("mundo", "final"), "mando mundo final")

	if out[0].Status != align.Correct {
		t.Errorf("first target: verdict %v, want correct", out[0].Status)
	}
	if out[1].Status != align.Correct {
		t.Errorf("second target: verdict %v, want correct", out[1].Status)
	}
}

func TestAlign_WindowIsBounded(t *testing.T) {
	t.Parallel()

	a := align.New()
	// The matching word sits at position 6, one past the 5-word window.
	out, _ := a.Align(targets("uno"), "rojo gato perro flor cielo uno")

	if out[0].Status != align.Poor {
		t.Errorf("verdict %v, want poor for a match outside the window", out[0].Status)
	}

	wide := align.New(align.WithWindowSize(6))
	out, _ = wide.Align(targets("uno"), "rojo gato perro flor cielo uno")
	if out[0].Status != align.Correct {
		t.Errorf("verdict %v, want correct with a 6-word window", out[0].Status)
	}
}

func TestAlign_TranscriptTokensAreNormalized(t *testing.T) {
	t.Parallel()

	a := align.New()
	out, _ := a.Align(targets("hola"), "HOLA,")

	if out[0].Status != align.Correct {
		t.Errorf("verdict %v, want correct for case/punctuation variant", out[0].Status)
	}
}

func TestAlign_ScoreRounding(t *testing.T) {
	t.Parallel()

	a := align.New()

	_, sum := a.Align(targets("uno", "dos", "tres"), "uno xxxx yyyy")
	if sum.Score != 33 {
		t.Errorf("Score = %d, want 33 (round of 100/3)", sum.Score)
	}

	_, sum = a.Align(targets("uno", "dos", "tres"), "uno dos yyyy")
	if sum.Score != 67 {
		t.Errorf("Score = %d, want 67 (round of 200/3)", sum.Score)
	}
}

func TestAlign_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	a := align.New()
	in := targets("uno", "dos")
	_, _ = a.Align(in, "uno dos")

	for i, w := range in {
		if w.Status != align.Neutral {
			t.Errorf("input word %d mutated to %v", i, w.Status)
		}
	}
}

func TestAlign_ExactlyOneVerdictPerWord(t *testing.T) {
	t.Parallel()

	a := align.New()
	out, sum := a.Align(targets("el", "perro", "come", "pan"), "perro pan")

	for i, w := range out {
		if w.Status == align.Neutral {
			t.Errorf("word %d (%q) left unscored", i, w.Original)
		}
	}
	if got := sum.Correct + sum.Close + sum.Poor; got != len(out) {
		t.Errorf("verdict counts sum to %d, want %d", got, len(out))
	}
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		want  align.Band
	}{
		{100, align.BandExcellent},
		{90, align.BandExcellent},
		{89, align.BandGood},
		{70, align.BandGood},
		{69, align.BandNeedsWork},
		{0, align.BandNeedsWork},
	}
	for _, tc := range cases {
		if got := align.BandFor(tc.score); got != tc.want {
			t.Errorf("BandFor(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
