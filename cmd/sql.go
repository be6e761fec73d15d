package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the match database",
	Long: `Run an arbitrary SQL query against the match database and print results as a table.

Schema overview:
  matches(match_id TEXT, map_name, match_time)
  player_match_stats(stat_id, match_id, player_id TEXT, player_name, champion,
    team_idx, won, level, kills, deaths, assists, kda, credits, cpm,
    damage_dealt, damage_taken, shielding, healing)

Note: player_id is stored as TEXT and is 'NO_ID' when the profile link is
missing. Use quotes: WHERE player_id = '123456'

player_match_stats is append-only, so a forced reanalysis leaves older rows
for the same match. Use MAX(stat_id) per (match_id, player_id) for the latest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("empty query")
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := newTable(os.Stdout)
	table.Header(toAny(cols)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
