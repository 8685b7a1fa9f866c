package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/journey-recon/internal/model"
)

func TestExactKey(t *testing.T) {
	assert.Equal(t, "johnsmith|2024-01-01", ExactKey(" John Smith ", "2024-01-01"))
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil, time.Local)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.ForDate("2024-01-01"))
	assert.Empty(t, idx.Dates())
}

func TestBuildIndex_ExactLookup(t *testing.T) {
	idx := BuildIndex([]model.Candidate{cand(t, 1, "John Smith", "2024-01-01")}, time.Local)

	c, ok := idx.Exact(ExactKey("JOHN SMITH", "2024-01-01"))
	require.True(t, ok)
	assert.Equal(t, int64(1), c.ID)

	_, ok = idx.Exact(ExactKey("John Smith", "2024-01-02"))
	assert.False(t, ok)
}

func TestBuildIndex_ExactCollisionLastWins(t *testing.T) {
	idx := BuildIndex([]model.Candidate{
		cand(t, 1, "John Smith", "2024-01-01"),
		cand(t, 2, "john  smith", "2024-01-01"),
	}, time.Local)

	c, ok := idx.Exact("johnsmith|2024-01-01")
	require.True(t, ok)
	assert.Equal(t, int64(2), c.ID)
	assert.Len(t, idx.ForDate("2024-01-01"), 2)
}

func TestBuildIndex_DateGroupsKeepInputOrder(t *testing.T) {
	idx := BuildIndex([]model.Candidate{
		cand(t, 3, "Cara", "2024-01-02"),
		cand(t, 1, "Abe", "2024-01-01"),
		cand(t, 2, "Bea", "2024-01-02"),
	}, time.Local)

	got := idx.ForDate("2024-01-02")
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, idx.Dates())
	assert.Equal(t, 3, idx.Len())
}

func TestBuildIndex_TimeOfDayCollapses(t *testing.T) {
	idx := BuildIndex([]model.Candidate{
		{ID: 1, Name: "Early", JourneyDate: time.Date(2024, 5, 1, 0, 5, 0, 0, time.Local)},
		{ID: 2, Name: "Late", JourneyDate: time.Date(2024, 5, 1, 23, 55, 0, 0, time.Local)},
	}, time.Local)

	assert.Len(t, idx.ForDate("2024-05-01"), 2)
}

func TestBuildIndex_UsesLocation(t *testing.T) {
	brisbane := time.FixedZone("AEST", 10*60*60)
	stored := time.Date(2024, 3, 1, 0, 0, 0, 0, brisbane).UTC() // 2024-02-29T14:00Z

	idx := BuildIndex([]model.Candidate{{ID: 1, Name: "Ann", JourneyDate: stored}}, brisbane)
	assert.Len(t, idx.ForDate("2024-03-01"), 1)
	assert.Empty(t, idx.ForDate("2024-02-29"))
}

func TestBuildIndex_CopiesInput(t *testing.T) {
	in := []model.Candidate{cand(t, 1, "John Smith", "2024-01-01")}
	idx := BuildIndex(in, time.Local)

	in[0].Name = "Someone Else"

	c, ok := idx.Exact("johnsmith|2024-01-01")
	require.True(t, ok)
	assert.Equal(t, "John Smith", c.Name)
}
