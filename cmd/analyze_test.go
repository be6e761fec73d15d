package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optisebas/paladins-match-analyzer/internal/config"
	"github.com/optisebas/paladins-match-analyzer/internal/model"
	"github.com/optisebas/paladins-match-analyzer/internal/pipeline"
)

func TestWriteReportUsesConfiguredTopN(t *testing.T) {
	cfg = config.Default()
	cfg.General.TopNRelationsToShow = 2
	cfg.CSV.OutputDir = t.TempDir()
	cfg.CSV.GenerateDetailedStats = false
	cfg.CSV.GenerateRelations = false
	cfg.CSV.GenerateMapStats = false
	analyzeNoCSV = false

	rep := &pipeline.Report{
		Player: model.Player{ID: "1", Name: "Main"},
		Scope:  config.ScopeRun,
		Champions: []model.GroupStats{
			{Key: "Androxus", Matches: 5, Wins: 3},
			{Key: "Seris", Matches: 3, Wins: 1},
			{Key: "Viktor", Matches: 1},
		},
		Summary: model.RunSummary{Matches: 9, Wins: 4},
	}
	var out bytes.Buffer
	writeReport(&out, rep)

	got := out.String()
	require.Contains(t, got, "Androxus")
	require.Contains(t, got, "Seris")
	require.NotContains(t, got, "Viktor")

	// The export keeps the full table.
	b, err := os.ReadFile(filepath.Join(cfg.CSV.OutputDir, "champ_stats_Main.csv"))
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(string(b), "\n"))
	require.Contains(t, string(b), "Viktor")
}
