package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/journey-recon/internal/model"
)

func ptr[T any](v T) *T { return &v }

// cand builds a candidate whose journey date is local midnight of date.
func cand(t *testing.T, id int64, name, date string) model.Candidate {
	t.Helper()
	d, err := ParseDateKey(date, time.Local)
	require.NoError(t, err)
	return model.Candidate{ID: id, Name: name, JourneyDate: d}
}

// constScorer scores every pair the same.
func constScorer(score float64) Scorer {
	return ScorerFunc(func(_, _ string) float64 { return score })
}

func newTestMatcher(cands []model.Candidate, scorer Scorer) *Matcher {
	opts := DefaultOptions()
	if scorer != nil {
		opts.Scorer = scorer
	}
	return NewMatcher(BuildIndex(cands, time.Local), opts)
}
