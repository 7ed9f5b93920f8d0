package score_test

import (
	"testing"

	"github.com/ecantero/habla/internal/score"
)

func TestSimilarity_Identity(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"hola", "a", "murciélago", "ñandú", ""} {
		if got := score.Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %f, want 1.0", s, s, got)
		}
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	t.Parallel()

	if got := score.Similarity("", ""); got != 1.0 {
		t.Errorf("Similarity(\"\", \"\") = %f, want 1.0", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"hola", "ola"},
		{"mundo", "mando"},
		{"tres", ""},
		{"perro", "pero"},
		{"árbol", "arbol"},
	}
	for _, p := range pairs {
		ab := score.Similarity(p[0], p[1])
		ba := score.Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %f but Similarity(%q, %q) = %f", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestSimilarity_KnownRatios(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{"hola", "ola", 0.75},  // one deletion over max length 4
		{"uno", "uno", 1.0},
		{"dos", "tres", 1 - 3.0/4.0},
		{"casa", "cosa", 0.75}, // one substitution
		{"sol", "", 0.0},
	}
	for _, tc := range cases {
		if got := score.Similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("Similarity(%q, %q) = %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarity_RuneAware(t *testing.T) {
	t.Parallel()

	// "sí" vs "si": one substitution over rune length 2, not byte length 3.
	if got := score.Similarity("sí", "si"); got != 0.5 {
		t.Errorf("Similarity(%q, %q) = %f, want 0.5", "sí", "si", got)
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	t.Parallel()

	words := []string{"", "a", "ab", "hola", "holaa", "xyzzy", "ñoño"}
	for _, a := range words {
		for _, b := range words {
			got := score.Similarity(a, b)
			if got < 0 || got > 1 {
				t.Errorf("Similarity(%q, %q) = %f, out of [0,1]", a, b, got)
			}
		}
	}
}
