//go:build !integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/store"
)

// TestJourneysImportCommand_SQLite loads a journeys export and checks the
// SQLite store serves it as match candidates.
func TestJourneysImportCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	dbPath := filepath.Join(dir, "offline.db")
	t.Setenv("RECON_STORE_DRIVER", "sqlite")
	t.Setenv("RECON_STORE_SQLITE_PATH", dbPath)
	t.Setenv("RECON_MATCH_TIMEZONE", "UTC")
	t.Setenv("RECON_LOG_LEVEL", "error")

	csvPath := filepath.Join(dir, "journeys.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"id,driver_name,journey_date,route_name,packages\n1,John Smith,2024-01-01,R12,38\n2,Ann Lee,1/2/24,,10\n3,Bad Date,soon,,\n",
	), 0o644))

	ctx := context.Background()
	rootCmd.SetArgs([]string{"journeys", "import", "--file", csvPath})
	require.NoError(t, rootCmd.ExecuteContext(ctx))

	st, err := store.NewSQLite(dbPath, time.UTC)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	cands, err := st.LoadCandidates(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "John Smith", cands[0].Name)
	require.NotNil(t, cands[0].RouteName)
	assert.Equal(t, "R12", *cands[0].RouteName)
	assert.Equal(t, "Ann Lee", cands[1].Name)
	assert.Equal(t, "2024-01-02", cands[1].JourneyDate.Format(time.DateOnly))

	res, _ := matchOne(cands, model.SpreadsheetRow{Name: "john smith", Date: "2024-01-01"}, matchOptions(0.6, time.UTC))
	assert.Equal(t, model.StrategyExact, res.Strategy)
}

func TestJourneysImportCommand_RequiresSQLite(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	t.Setenv("RECON_STORE_DRIVER", "postgres")
	t.Setenv("RECON_LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"journeys", "import"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires store.driver=sqlite")
}

func TestFormatImportSummary(t *testing.T) {
	var buf bytes.Buffer
	formatImportSummary(&buf, 2, []model.RowError{{Source: "j.csv", Line: 4, Name: "Bad Date", Reason: `invalid date "soon"`}})

	out := buf.String()
	assert.Contains(t, out, "Imported: 2")
	assert.Contains(t, out, "Skipped:  1")
	assert.Contains(t, out, `skipped j.csv line 4 (Bad Date): invalid date "soon"`)
}
