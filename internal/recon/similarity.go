package recon

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer measures how alike two normalized names are. Implementations must
// be symmetric and return a value in [0,1], where 1 means identical.
type Scorer interface {
	Score(a, b string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(a, b string) float64

// Score calls f(a, b).
func (f ScorerFunc) Score(a, b string) float64 { return f(a, b) }

// LevenshteinScorer scores names as 1 - editDistance/maxLength over runes.
// Two empty strings score 1.
type LevenshteinScorer struct{}

// Score implements Scorer.
func (LevenshteinScorer) Score(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
