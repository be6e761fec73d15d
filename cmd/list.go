package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	return printMatchList(os.Stdout, db)
}

func printMatchList(w io.Writer, db *storage.DB) error {
	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches stored yet. Run 'paladins analyze' to add some.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-24s  %-16s  %s\n", "MATCH", "MAP", "DATE", "PLAYERS")
	fmt.Fprintf(w, "%-12s  %-24s  %-16s  %s\n",
		"────────────", "────────────────────────", "────────────────", "───────")
	for _, m := range matches {
		date := "unknown"
		if m.Time != nil {
			date = m.Time.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-12s  %-24s  %-16s  %7d\n", m.MatchID, m.MapName, date, m.Players)
	}
	return nil
}
