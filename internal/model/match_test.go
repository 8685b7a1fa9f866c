package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategy_Matched(t *testing.T) {
	for _, s := range []Strategy{StrategyExact, StrategyPartial, StrategyFuzzy, StrategyFirstLast} {
		assert.True(t, s.Matched(), "strategy %s should carry a driver", s)
	}
	assert.False(t, StrategyNoCandidates.Matched())
	assert.False(t, StrategyNoMatch.Matched())
}

func TestInsertRow_Values_Matched(t *testing.T) {
	name := "John Smith"
	route := "R12"
	start, end := 3, 41

	row := InsertRow{
		OriginalName:        "john smith",
		MatchedName:         &name,
		Date:                "2024-01-01",
		Deliveries:          40,
		FullStop:            2,
		DoubleStop:          1,
		RouteName:           &route,
		StartSeq:            &start,
		EndSeq:              &end,
		DeliveryDiscrepancy: 2,
	}

	vals := row.Values()
	require.Len(t, vals, len(InsertColumns))
	assert.Equal(t, []any{"john smith", "John Smith", "2024-01-01", 40, 2, 1, "R12", 3, 41, false, 2}, vals)
}

func TestInsertRow_Values_UnmatchedAreUntypedNil(t *testing.T) {
	row := InsertRow{OriginalName: "Zzqx Unknown", Date: "2024-01-01", Deliveries: 5, Ambiguous: true, DeliveryDiscrepancy: 5}

	vals := row.Values()
	require.Len(t, vals, 11)
	for _, i := range []int{1, 6, 7, 8} {
		assert.True(t, vals[i] == nil, "column %s should be untyped nil", InsertColumns[i])
	}
	assert.Equal(t, true, vals[9])
	assert.Equal(t, 5, vals[10])
}

func TestCandidate_PackageCount(t *testing.T) {
	var nilCand *Candidate
	assert.Equal(t, 0, nilCand.PackageCount())
	assert.Equal(t, 0, (&Candidate{}).PackageCount())

	n := 12
	assert.Equal(t, 12, (&Candidate{Packages: &n}).PackageCount())
}

func TestRowError_Error(t *testing.T) {
	assert.Equal(t, "line 4: missing date", RowError{Line: 4, Reason: "missing date"}.Error())
	assert.Equal(t, "line 7 (Ann Lee): negative deliveries", RowError{Line: 7, Name: "Ann Lee", Reason: "negative deliveries"}.Error())
	assert.Equal(t, "week2.csv line 4: missing date", RowError{Source: "week2.csv", Line: 4, Reason: "missing date"}.Error())
	assert.Equal(t, "week2.csv line 7 (Ann Lee): bad", RowError{Source: "week2.csv", Line: 7, Name: "Ann Lee", Reason: "bad"}.Error())
}
