package recon

import (
	"slices"
	"time"

	"github.com/sells-group/journey-recon/internal/model"
)

// indexed pairs a candidate with its precomputed normalized name.
type indexed struct {
	cand *model.Candidate
	norm string
}

// Index holds the two lookup structures over one run's candidate set:
// an exact name|date map and a per-date list in input order. It owns a copy
// of the candidates and is read-only once built; rebuild it when the
// underlying dataset changes.
type Index struct {
	exact  map[string]*model.Candidate
	byDate map[string][]indexed
	size   int
}

// ExactKey builds the exact-index key for a name and a YYYY-MM-DD date.
func ExactKey(name, date string) string {
	return NormalizeName(name) + "|" + date
}

// entries returns the indexed candidates for a date in input order.
func (idx *Index) entries(date string) []indexed {
	return idx.byDate[date]
}

// BuildIndex indexes candidates by their calendar date in loc (nil means
// time.Local). On an exact-key collision the later candidate wins.
func BuildIndex(candidates []model.Candidate, loc *time.Location) *Index {
	owned := slices.Clone(candidates)
	idx := &Index{
		exact:  make(map[string]*model.Candidate, len(owned)),
		byDate: make(map[string][]indexed),
		size:   len(owned),
	}

	for i := range owned {
		c := &owned[i]
		date := DateKey(c.JourneyDate, loc)
		norm := NormalizeName(c.Name)

		idx.exact[ExactKey(norm, date)] = c
		idx.byDate[date] = append(idx.byDate[date], indexed{cand: c, norm: norm})
	}

	return idx
}

// Exact returns the candidate stored under key, if any.
func (idx *Index) Exact(key string) (*model.Candidate, bool) {
	c, ok := idx.exact[key]
	return c, ok
}

// ForDate returns the candidates for a YYYY-MM-DD date in input order.
func (idx *Index) ForDate(date string) []*model.Candidate {
	entries := idx.entries(date)
	out := make([]*model.Candidate, len(entries))
	for i, e := range entries {
		out[i] = e.cand
	}
	return out
}

// Dates returns the indexed dates in ascending order.
func (idx *Index) Dates() []string {
	dates := make([]string, 0, len(idx.byDate))
	for d := range idx.byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates
}

// Len returns the number of indexed candidates.
func (idx *Index) Len() int { return idx.size }
