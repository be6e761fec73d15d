package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/report"
	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var showPlayerID string

var showCmd = &cobra.Command{
	Use:   "show <match-id-prefix>",
	Short: "Show stored player rows of a match by id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayerID, "player", "", "highlight player by profile id")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	return showMatch(os.Stdout, db, args[0], showPlayerID)
}

// showMatch prints the first match whose id starts with prefix. A missing
// match is reported on w, not returned as an error.
func showMatch(w io.Writer, db *storage.DB, prefix, playerID string) error {
	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if match == nil {
		fmt.Fprintf(w, "No match found with id prefix %q\n", prefix)
		return nil
	}

	stats, err := db.GetMatchStats(match.MatchID)
	if err != nil {
		return fmt.Errorf("get player stats: %w", err)
	}
	match.Players = len(stats)

	report.PrintMatchSummary(w, *match)
	report.PrintPlayerTable(w, stats, playerID)
	return nil
}
