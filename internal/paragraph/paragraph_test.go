package paragraph_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/paragraph"
)

func TestNew_WordCountMatchesTokens(t *testing.T) {
	t.Parallel()

	raw := "Hola, me llamo   Ana."
	p := paragraph.New(raw)

	want := len(strings.Fields(raw))
	if p.Len() != want {
		t.Fatalf("Len() = %d, want %d", p.Len(), want)
	}
}

func TestNew_WordsCarryAllForms(t *testing.T) {
	t.Parallel()

	p := paragraph.New("¡Llama, rápido!")
	words := p.Words()

	if words[0].Original != "¡Llama," {
		t.Errorf("Original = %q, want %q", words[0].Original, "¡Llama,")
	}
	if words[0].Normalized != "¡llama" {
		t.Errorf("Normalized = %q, want %q", words[0].Normalized, "¡llama")
	}
	if words[0].Hint == "" {
		t.Error("Hint is empty, want a generated hint")
	}
	for i, w := range words {
		if w.Status != align.Neutral {
			t.Errorf("word %d starts with verdict %v, want neutral", i, w.Status)
		}
	}
}

func TestReset_ClearsVerdicts(t *testing.T) {
	t.Parallel()

	p := paragraph.New("uno dos tres")
	words := p.Words()
	words[0].Status = align.Correct
	words[2].Status = align.Poor
	p.SetWords(words)

	p.Reset()
	for i, w := range p.Words() {
		if w.Status != align.Neutral {
			t.Errorf("word %d has verdict %v after Reset, want neutral", i, w.Status)
		}
	}
}

func TestSetWords_RejectsLengthChange(t *testing.T) {
	t.Parallel()

	p := paragraph.New("uno dos tres")
	p.SetWords([]align.Word{{Original: "uno"}})

	if p.Len() != 3 {
		t.Errorf("Len() = %d after bad SetWords, want 3", p.Len())
	}
}

func TestDefaultCorpus_AllTiersPopulated(t *testing.T) {
	t.Parallel()

	c := paragraph.DefaultCorpus()
	for _, tier := range []paragraph.Difficulty{paragraph.Beginner, paragraph.Intermediate, paragraph.Advanced} {
		if c.Count(tier) == 0 {
			t.Errorf("tier %q has no paragraphs", tier)
		}
	}
}

func TestPick_WrapsIndex(t *testing.T) {
	t.Parallel()

	c := paragraph.DefaultCorpus()
	n := c.Count(paragraph.Beginner)

	first, err := c.Pick(paragraph.Beginner, 0)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	wrapped, err := c.Pick(paragraph.Beginner, n)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if first.Text != wrapped.Text {
		t.Errorf("Pick(0) = %q, Pick(%d) = %q; want same paragraph", first.Text, n, wrapped.Text)
	}
}

func TestPick_UnknownTier(t *testing.T) {
	t.Parallel()

	c := paragraph.DefaultCorpus()
	if _, err := c.Pick(paragraph.Difficulty("expert"), 0); !errors.Is(err, paragraph.ErrEmptyTier) {
		t.Errorf("Pick unknown tier err = %v, want ErrEmptyTier", err)
	}
}

func TestLoadCorpusFromReader_OverridesOneTier(t *testing.T) {
	t.Parallel()

	const src = "beginner:\n  - \"Sol y mar.\"\n"
	c, err := paragraph.LoadCorpusFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadCorpusFromReader: %v", err)
	}

	if c.Count(paragraph.Beginner) != 1 {
		t.Errorf("beginner count = %d, want 1", c.Count(paragraph.Beginner))
	}
	if c.Count(paragraph.Advanced) == 0 {
		t.Error("advanced tier lost its built-in paragraphs")
	}

	p, err := c.Pick(paragraph.Beginner, 0)
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if p.Text != "Sol y mar." {
		t.Errorf("Pick text = %q, want %q", p.Text, "Sol y mar.")
	}
}

func TestLoadCorpusFromReader_RejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	const src = "expert:\n  - \"nope\"\n"
	if _, err := paragraph.LoadCorpusFromReader(strings.NewReader(src)); err == nil {
		t.Fatal("LoadCorpusFromReader accepted an unknown tier key, want error")
	}
}

func TestDifficulty_IsValid(t *testing.T) {
	t.Parallel()

	if !paragraph.Beginner.IsValid() {
		t.Error("beginner reported invalid")
	}
	if paragraph.Difficulty("expert").IsValid() {
		t.Error("unknown tier reported valid")
	}
}
