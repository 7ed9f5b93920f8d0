package paragraph

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyTier is returned by Pick when the requested tier holds no
// paragraphs.
var ErrEmptyTier = errors.New("paragraph: tier is empty")

// Difficulty selects one of the three corpus tiers.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// IsValid reports whether d is a recognised difficulty tier.
func (d Difficulty) IsValid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Corpus is the difficulty-tiered set of practice paragraphs.
type Corpus struct {
	tiers map[Difficulty][]string
}

// corpusFile is the YAML schema for an external corpus file.
type corpusFile struct {
	Beginner     []string `yaml:"beginner"`
	Intermediate []string `yaml:"intermediate"`
	Advanced     []string `yaml:"advanced"`
}

// builtin holds the default paragraphs shipped with the tool. They are
// short Latin-American Spanish texts chosen for everyday vocabulary.
var builtin = map[Difficulty][]string{
	Beginner: {
		"Hola, me llamo Ana y vivo en una casa blanca.",
		"El gato duerme en la silla todo el día.",
		"Mi amigo come pan y toma café por la mañana.",
	},
	Intermediate: {
		"Ayer caminamos por el mercado y compramos frutas frescas para la semana.",
		"La lluvia llegó de repente y todos corrieron a buscar refugio bajo los árboles.",
		"Mi abuela cocina un arroz con pollo que huele a cebolla y ajo desde la calle.",
	},
	Advanced: {
		"El arqueólogo describió con entusiasmo los jeroglíficos hallados en la excavación, aunque reconoció que su interpretación seguía siendo provisional.",
		"Aquella vieja guitarra, heredada de su bisabuelo, guardaba en sus cuerdas la memoria de incontables serenatas veracruzanas.",
		"La señal del faro parpadeaba entre la niebla mientras los pescadores aseguraban las redes contra el vendaval que se avecinaba.",
	},
}

// DefaultCorpus returns the built-in corpus.
func DefaultCorpus() *Corpus {
	tiers := make(map[Difficulty][]string, len(builtin))
	for d, ps := range builtin {
		tiers[d] = append([]string(nil), ps...)
	}
	return &Corpus{tiers: tiers}
}

// LoadCorpus reads a YAML corpus file and returns a Corpus. Tiers missing
// from the file fall back to the built-in paragraphs, so a file may override
// just one tier.
func LoadCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("paragraph: open corpus %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCorpusFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("paragraph: parse corpus %q: %w", path, err)
	}
	return c, nil
}

// LoadCorpusFromReader decodes a YAML corpus from r. Useful in tests where
// corpora are written as string literals.
func LoadCorpusFromReader(r io.Reader) (*Corpus, error) {
	var cf corpusFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("paragraph: decode corpus yaml: %w", err)
	}

	c := DefaultCorpus()
	if len(cf.Beginner) > 0 {
		c.tiers[Beginner] = cf.Beginner
	}
	if len(cf.Intermediate) > 0 {
		c.tiers[Intermediate] = cf.Intermediate
	}
	if len(cf.Advanced) > 0 {
		c.tiers[Advanced] = cf.Advanced
	}
	return c, nil
}

// Count returns how many paragraphs tier holds. Unknown tiers count zero.
func (c *Corpus) Count(tier Difficulty) int {
	return len(c.tiers[tier])
}

// Pick returns the paragraph at index within tier, fully loaded as target
// words. The index wraps modulo the tier size so callers can cycle through
// a tier without bounds bookkeeping.
func (c *Corpus) Pick(tier Difficulty, index int) (*Paragraph, error) {
	ps := c.tiers[tier]
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTier, tier)
	}
	if index < 0 {
		index = -index
	}
	return New(ps[index%len(ps)]), nil
}
