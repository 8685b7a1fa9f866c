package recon

import (
	"strings"
	"time"

	"github.com/sells-group/journey-recon/internal/model"
)

// DefaultFuzzyThreshold is the minimum similarity the fuzzy strategy accepts.
const DefaultFuzzyThreshold = 0.6

// Fixed confidences for the non-fuzzy strategies.
const (
	ConfidenceExact     = 1.0
	ConfidencePartial   = 0.9
	ConfidenceFirstLast = 0.7
)

// Options configures the match cascade.
type Options struct {
	// FuzzyThreshold is the inclusive lower bound for a fuzzy match.
	FuzzyThreshold float64
	// Location decides the calendar date of candidate journeys.
	Location *time.Location
	// Scorer computes fuzzy similarity. Nil means LevenshteinScorer.
	Scorer Scorer
}

// DefaultOptions returns the production cascade settings.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold: DefaultFuzzyThreshold,
		Location:       time.Local,
		Scorer:         LevenshteinScorer{},
	}
}

// Matcher runs the match cascade for spreadsheet rows against one Index.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	idx  *Index
	opts Options
}

// NewMatcher creates a Matcher over idx.
func NewMatcher(idx *Index, opts Options) *Matcher {
	if opts.Scorer == nil {
		opts.Scorer = LevenshteinScorer{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Matcher{idx: idx, opts: opts}
}

// Options returns the matcher's effective options.
func (m *Matcher) Options() Options { return m.opts }

// Match reconciles one row. Strategies run in a fixed order and the first
// hit wins: exact, partial substring, fuzzy similarity, first/last name.
// It never fails; an unmatched row yields no_candidates or no_match.
func (m *Matcher) Match(row model.SpreadsheetRow) model.MatchResult {
	name := NormalizeName(row.Name)

	if name != "" {
		if c, ok := m.idx.Exact(ExactKey(name, row.Date)); ok {
			return model.MatchResult{Driver: c, Strategy: model.StrategyExact, Confidence: ConfidenceExact}
		}
	}

	candidates := m.idx.entries(row.Date)
	if len(candidates) == 0 {
		return model.MatchResult{Strategy: model.StrategyNoCandidates}
	}
	if name == "" {
		return model.MatchResult{Strategy: model.StrategyNoMatch}
	}

	if c := matchPartial(name, candidates); c != nil {
		return model.MatchResult{Driver: c, Strategy: model.StrategyPartial, Confidence: ConfidencePartial}
	}

	if c, score := m.matchFuzzy(name, candidates); c != nil {
		return model.MatchResult{Driver: c, Strategy: model.StrategyFuzzy, Confidence: score}
	}

	if c := matchFirstLast(row.Name, candidates); c != nil {
		return model.MatchResult{Driver: c, Strategy: model.StrategyFirstLast, Confidence: ConfidenceFirstLast}
	}

	return model.MatchResult{Strategy: model.StrategyNoMatch}
}

// matchPartial returns the first candidate, in list order, whose normalized
// name contains or is contained by name. First hit wins, not the best.
func matchPartial(name string, candidates []indexed) *model.Candidate {
	for _, e := range candidates {
		if e.norm == "" {
			continue
		}
		if strings.Contains(e.norm, name) || strings.Contains(name, e.norm) {
			return e.cand
		}
	}
	return nil
}

// matchFuzzy returns the highest-scoring candidate when its score reaches
// the threshold. On equal scores the earlier candidate is kept.
func (m *Matcher) matchFuzzy(name string, candidates []indexed) (*model.Candidate, float64) {
	var best *model.Candidate
	bestScore := -1.0

	for _, e := range candidates {
		if s := m.opts.Scorer.Score(name, e.norm); s > bestScore {
			best, bestScore = e.cand, s
		}
	}

	if best == nil || bestScore < m.opts.FuzzyThreshold {
		return nil, 0
	}
	return best, bestScore
}

// matchFirstLast applies only to multi-token names. It returns the first
// candidate whose normalized name contains the normalized first or last token.
func matchFirstLast(raw string, candidates []indexed) *model.Candidate {
	tokens := strings.Fields(raw)
	if len(tokens) < 2 {
		return nil
	}

	first := NormalizeName(tokens[0])
	last := NormalizeName(tokens[len(tokens)-1])

	for _, e := range candidates {
		if e.norm == "" {
			continue
		}
		if (first != "" && strings.Contains(e.norm, first)) || (last != "" && strings.Contains(e.norm, last)) {
			return e.cand
		}
	}
	return nil
}
