package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/aggregator"
	"github.com/optisebas/paladins-match-analyzer/internal/report"
	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history <player-id>",
	Short: "Per-match history of a player from the database, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	return printHistory(os.Stdout, db, args[0])
}

func printHistory(w io.Writer, db *storage.DB, playerID string) error {
	stats, err := db.GetPlayerHistory(playerID)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "no matches found")
		return nil
	}

	name := stats[0].PlayerName
	report.PrintHistoryTable(w, stats)
	report.PrintChampionTable(w, name, aggregator.ChampionStats(stats, playerID))
	return nil
}
