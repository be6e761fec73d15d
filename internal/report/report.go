package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/optisebas/paladins-match-analyzer/internal/aggregator"
	"github.com/optisebas/paladins-match-analyzer/internal/config"
	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// comma formats v rounded to an integer with thousands separators.
func comma(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// PrintMatchSummary prints a one-line header for a stored match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	when := "unknown time"
	if s.Time != nil {
		when = s.Time.Local().Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w, "\nMatch: %s  |  Map: %s  |  Date: %s  |  Players: %d\n\n", s.MatchID, s.MapName, when, s.Players)
}

// PrintPlayerTable prints every player row of a match. If focusID is
// non-empty, that player's row is marked with ">".
func PrintPlayerTable(w io.Writer, stats []model.PlayerMatchStat, focusID string) {
	table := newTable(w)
	table.Header(" ", "NAME", "ID", "CHAMPION", "TEAM", "RESULT", "LVL", "K", "D", "A", "KDA",
		"CREDITS", "CPM", "DMG", "TAKEN", "SHIELD", "HEAL")

	for _, s := range stats {
		marker := " "
		if focusID != "" && s.PlayerID == focusID {
			marker = ">"
		}
		table.Append(
			marker,
			s.PlayerName,
			s.PlayerID,
			s.Champion,
			s.Team.String(),
			result(s.Won),
			strconv.Itoa(s.Level),
			strconv.Itoa(s.Kills),
			strconv.Itoa(s.Deaths),
			strconv.Itoa(s.Assists),
			fmt.Sprintf("%.2f", s.KDA),
			humanize.Comma(int64(s.Credits)),
			strconv.Itoa(s.CPM),
			humanize.Comma(int64(s.DamageDealt)),
			humanize.Comma(int64(s.DamageTaken)),
			humanize.Comma(int64(s.Shielding)),
			humanize.Comma(int64(s.Healing)),
		)
	}
	table.Render()
}

// PrintHistoryTable prints one player's stored rows, one line per match.
func PrintHistoryTable(w io.Writer, stats []model.PlayerMatchStat) {
	table := newTable(w)
	table.Header("MATCH", "DATE", "MAP", "CHAMPION", "RESULT", "K", "D", "A", "KDA", "DMG", "HEAL", "SHIELD")

	for _, s := range stats {
		date := "-"
		if s.MatchTime != nil {
			date = s.MatchTime.Local().Format("2006-01-02")
		}
		table.Append(
			s.MatchID,
			date,
			s.MapName,
			s.Champion,
			result(s.Won),
			strconv.Itoa(s.Kills),
			strconv.Itoa(s.Deaths),
			strconv.Itoa(s.Assists),
			fmt.Sprintf("%.2f", s.KDA),
			humanize.Comma(int64(s.DamageDealt)),
			humanize.Comma(int64(s.Healing)),
			humanize.Comma(int64(s.Shielding)),
		)
	}
	table.Render()
}

func result(won bool) string {
	if won {
		return "W"
	}
	return "L"
}

// PrintChampionTable prints per-champion averages for the tracked player.
func PrintChampionTable(w io.Writer, player string, groups []model.GroupStats) {
	fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("--- CHAMPION STATS FOR %s ---", strings.ToUpper(player))))
	table := newTable(w)
	table.Header("CHAMPION", "P", "V", "WR", "KDA", "K", "D", "A", "DMG", "HEAL", "SHIELD", "LVL")
	for _, g := range groups {
		table.Append(
			g.Key,
			strconv.Itoa(g.Matches),
			strconv.Itoa(g.Wins),
			pct(g.WinRate()),
			fmt.Sprintf("%.2f", g.AvgKDA),
			fmt.Sprintf("%.1f", g.AvgKills),
			fmt.Sprintf("%.1f", g.AvgDeaths),
			fmt.Sprintf("%.1f", g.AvgAssists),
			comma(g.AvgDamageDealt),
			comma(g.AvgHealing),
			comma(g.AvgShielding),
			fmt.Sprintf("%.0f", g.AvgLevel),
		)
	}
	table.Render()
}

// PrintMapTable prints per-map results for the tracked player.
func PrintMapTable(w io.Writer, player string, groups []model.GroupStats) {
	fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("--- MAP STATS FOR %s ---", strings.ToUpper(player))))
	table := newTable(w)
	table.Header("MAP", "P", "V", "WR", "KDA", "DMG", "HEAL")
	for _, g := range groups {
		table.Append(
			g.Key,
			strconv.Itoa(g.Matches),
			strconv.Itoa(g.Wins),
			pct(g.WinRate()),
			fmt.Sprintf("%.2f", g.AvgKDA),
			comma(g.AvgDamageDealt),
			comma(g.AvgHealing),
		)
	}
	table.Render()
}

// PrintRelationships prints the top n teammates and opponents.
func PrintRelationships(w io.Writer, player string, ranked []model.RelationshipCounter, n int) {
	if len(ranked) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("--- RELATIONSHIP SUMMARY FOR %s ---", strings.ToUpper(player))))

	if mates := aggregator.TopTeammates(ranked, n); len(mates) > 0 {
		fmt.Fprintf(w, "%s\n", green(fmt.Sprintf("  Most frequent teammates (Top %d):", n)))
		for _, c := range mates {
			fmt.Fprintf(w, "    - %s (%s - %s) | %d games | WR: %.1f%%\n",
				c.Name, green(fmt.Sprintf("%dW", c.WithWins)), red(fmt.Sprintf("%dL", c.WithLosses())),
				c.WithGames, c.WithWinRate())
		}
	}
	if foes := aggregator.TopOpponents(ranked, n); len(foes) > 0 {
		fmt.Fprintf(w, "%s\n", red(fmt.Sprintf("  Most frequent opponents (Top %d):", n)))
		for _, c := range foes {
			fmt.Fprintf(w, "    - %s (Your record: %s - %s) | %d games vs | Your WR: %.1f%%\n",
				c.Name, green(fmt.Sprintf("%dW", c.VsWins)), red(fmt.Sprintf("%dL", c.VsLosses)),
				c.VsGames, c.VsWinRate())
		}
	}
}

// PrintRunSummary prints the tracked player's headline numbers.
func PrintRunSummary(w io.Writer, player, scope string, s model.RunSummary) {
	basis := "new matches in this run"
	if scope == config.ScopeAll {
		basis = "stored matches"
	}
	fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("--- GLOBAL STATS SUMMARY FOR %s (based on %d %s) ---",
		strings.ToUpper(player), s.Matches, basis)))
	if s.Matches == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", green(fmt.Sprintf("  Matches Analyzed: %d", s.Matches)))
	fmt.Fprintf(w, "%s\n", green(fmt.Sprintf("  Victories: %d (%.2f%%)", s.Wins, s.WinRate())))
	if s.Rows == 0 {
		return
	}
	fmt.Fprintf(w, "  Avg KDA: %s\n", cyan(fmt.Sprintf("%.2f", s.AvgKDA)))
	fmt.Fprintf(w, "  Avg K/D/A: %s\n", cyan(fmt.Sprintf("%.1f/%.1f/%.1f", s.AvgKills, s.AvgDeaths, s.AvgAssists)))
	fmt.Fprintf(w, "  Avg Damage: %s\n", cyan(comma(s.AvgDamage)))
	fmt.Fprintf(w, "  Avg Healing: %s\n", cyan(comma(s.AvgHealing)))
	fmt.Fprintf(w, "  Avg Shielding: %s\n", cyan(comma(s.AvgShielding)))
	fmt.Fprintf(w, "  Avg Credits: %s\n", cyan(comma(s.AvgCredits)))
}
