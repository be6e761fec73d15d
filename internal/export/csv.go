// Package export writes run results as CSV files (UTF-8 with a byte order
// mark, so spreadsheet tools pick the right encoding).
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

const bom = "\uFEFF"

// Writer writes CSV files into Dir.
type Writer struct {
	Dir string
}

// FileName returns "<prefix>_<player>.csv" with spaces in the player name
// replaced by underscores.
func FileName(prefix, player string) string {
	return prefix + "_" + strings.ReplaceAll(player, " ", "_") + ".csv"
}

// MatchStats writes the per-player rows of a run to stats_<player>.csv.
func (w Writer) MatchStats(player string, rows []model.PlayerMatchStat) (string, error) {
	header := []string{"MatchID", "PlayerName", "PlayerID", "Champion", "MapName", "MatchDateTime",
		"TeamIdx", "WonMatch", "Level", "Kills", "Deaths", "Assists", "KDA", "Credits", "CPM",
		"DamageDealt", "DamageTaken", "Shielding", "Healing"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.MatchID, r.PlayerName, r.PlayerID, r.Champion, r.MapName, formatTime(r.MatchTime),
			r.Team.String(), strconv.FormatBool(r.Won),
			itoa(r.Level), itoa(r.Kills), itoa(r.Deaths), itoa(r.Assists), ftoa(r.KDA),
			itoa(r.Credits), itoa(r.CPM), itoa(r.DamageDealt), itoa(r.DamageTaken),
			itoa(r.Shielding), itoa(r.Healing),
		})
	}
	return w.write(FileName("stats", player), header, records)
}

// Relationships writes ranked counters to relations_<player>.csv. The file
// is written even when there are no counters.
func (w Writer) Relationships(player string, ranked []model.RelationshipCounter) (string, error) {
	header := []string{"OtherPlayerID", "OtherPlayerName", "PlayedWith_Games", "With_Wins", "With_Losses",
		"PlayedWith_WinRate (%)", "PlayedVs_Games", "MainPlayer_Wins_Vs", "MainPlayer_Losses_Vs",
		"WinRateVs_ForMainPlayer (%)", "TotalInteractions"}
	records := make([][]string, 0, len(ranked))
	for _, c := range ranked {
		records = append(records, []string{
			c.PlayerID, c.Name,
			itoa(c.WithGames), itoa(c.WithWins), itoa(c.WithLosses()), ftoa(c.WithWinRate()),
			itoa(c.VsGames), itoa(c.VsWins), itoa(c.VsLosses), ftoa(c.VsWinRate()),
			itoa(c.TotalInteractions()),
		})
	}
	return w.write(FileName("relations", player), header, records)
}

// Champions writes the full champion table to champ_stats_<player>.csv.
func (w Writer) Champions(player string, groups []model.GroupStats) (string, error) {
	header := []string{"Champion", "P", "V", "WR (%)", "KDA_avg", "K", "D", "A", "Dmg", "H", "S", "L"}
	records := make([][]string, 0, len(groups))
	for _, g := range groups {
		records = append(records, []string{
			g.Key, itoa(g.Matches), itoa(g.Wins), ftoa(g.WinRate()), ftoa(g.AvgKDA),
			ftoa(g.AvgKills), ftoa(g.AvgDeaths), ftoa(g.AvgAssists),
			ftoa(g.AvgDamageDealt), ftoa(g.AvgHealing), ftoa(g.AvgShielding), ftoa(g.AvgLevel),
		})
	}
	return w.write(FileName("champ_stats", player), header, records)
}

// Maps writes the full map table to map_stats_<player>.csv.
func (w Writer) Maps(player string, groups []model.GroupStats) (string, error) {
	header := []string{"MapName", "P", "V", "WR (%)", "KDA_avg", "Dmg", "H"}
	records := make([][]string, 0, len(groups))
	for _, g := range groups {
		records = append(records, []string{
			g.Key, itoa(g.Matches), itoa(g.Wins), ftoa(g.WinRate()), ftoa(g.AvgKDA),
			ftoa(g.AvgDamageDealt), ftoa(g.AvgHealing),
		})
	}
	return w.write(FileName("map_stats", player), header, records)
}

func (w Writer) write(name string, header []string, records [][]string) (string, error) {
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(bom); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := cw.WriteAll(records); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
