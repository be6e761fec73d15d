package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var summaryTop int

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all matches stored in the database:
match and row counts, date range, map breakdown and the most frequently
seen players.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 10, "number of players to list")
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.TotalMatches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'paladins analyze' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", ov.TotalMatches)
	fmt.Fprintf(os.Stdout, "  Player rows    : %d\n", ov.TotalRows)
	fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", ov.EarliestMatch, ov.LatestMatch)
	fmt.Fprintf(os.Stdout, "  Unique maps    : %d\n", ov.UniqueMaps)
	fmt.Fprintf(os.Stdout, "  Players seen   : %d\n", ov.UniquePlayers)

	maps, err := db.GetMapCounts()
	if err != nil {
		return fmt.Errorf("get map counts: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Maps ---\n\n")
	mt := newTable(os.Stdout)
	mt.Header("MAP", "MATCHES", "SHARE")
	for _, m := range maps {
		mt.Append(
			m.MapName,
			fmt.Sprintf("%d", m.Matches),
			fmt.Sprintf("%.0f%%", 100*float64(m.Matches)/float64(ov.TotalMatches)),
		)
	}
	mt.Render()

	players, err := db.GetTopPlayersByMatches(summaryTop)
	if err != nil {
		return fmt.Errorf("get top players: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Most Seen Players ---\n\n")
	pt := newTable(os.Stdout)
	pt.Header("NAME", "PLAYER ID", "MATCHES", "AVG KDA", "WIN%")
	for _, p := range players {
		pt.Append(
			p.Name,
			p.PlayerID,
			fmt.Sprintf("%d", p.Matches),
			fmt.Sprintf("%.2f", p.AvgKDA),
			fmt.Sprintf("%.0f%%", p.WinPct),
		)
	}
	pt.Render()
	return nil
}
