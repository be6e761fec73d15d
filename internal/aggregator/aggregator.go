// Package aggregator reduces parsed match rows into the per-run reports:
// teammate and opponent counters, per-champion and per-map summaries and the
// tracked player's headline numbers.
package aggregator

import (
	"sort"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

// ChampionStats groups the tracked player's rows by champion, most played
// first. Rows belonging to other players are ignored.
func ChampionStats(rows []model.PlayerMatchStat, trackedID string) []model.GroupStats {
	return groupBy(ownRows(rows, trackedID), func(s *model.PlayerMatchStat) string { return s.Champion })
}

// MapStats groups the tracked player's rows by map. It reports false when
// fewer than two distinct maps were played or the most common map is
// unknown, in which case no table should be shown.
func MapStats(rows []model.PlayerMatchStat, trackedID string) ([]model.GroupStats, bool) {
	own := ownRows(rows, trackedID)

	// ---- Decide whether the map table is meaningful. ----
	counts := make(map[string]int)
	for i := range own {
		counts[own[i].MapName]++
	}
	if len(counts) < 2 {
		return nil, false
	}
	mode, best := "", -1
	for name, n := range counts {
		// Ties go to the lexicographically smallest name.
		if n > best || (n == best && name < mode) {
			mode, best = name, n
		}
	}
	if mode == model.UnknownMap {
		return nil, false
	}

	return groupBy(own, func(s *model.PlayerMatchStat) string { return s.MapName }), true
}

// Top returns the first n groups; n <= 0 returns all of them.
func Top(groups []model.GroupStats, n int) []model.GroupStats {
	return limit(groups, n)
}

// Summarize computes the headline numbers for one run. matches and wins
// count the matches where the tracked player's team was resolved; the
// averages cover the tracked player's rows.
func Summarize(rows []model.PlayerMatchStat, trackedID string, matches, wins int) model.RunSummary {
	s := model.RunSummary{Matches: matches, Wins: wins}
	own := ownRows(rows, trackedID)
	if len(own) == 0 {
		return s
	}
	var kda, k, d, a, dmg, heal, shield, credits float64
	for i := range own {
		r := &own[i]
		kda += r.KDA
		k += float64(r.Kills)
		d += float64(r.Deaths)
		a += float64(r.Assists)
		dmg += float64(r.DamageDealt)
		heal += float64(r.Healing)
		shield += float64(r.Shielding)
		credits += float64(r.Credits)
	}
	n := float64(len(own))
	s.Rows = len(own)
	s.AvgKDA = kda / n
	s.AvgKills = k / n
	s.AvgDeaths = d / n
	s.AvgAssists = a / n
	s.AvgDamage = dmg / n
	s.AvgHealing = heal / n
	s.AvgShielding = shield / n
	s.AvgCredits = credits / n
	return s
}

// MatchOutcome is one stored match replayed for aggregation.
type MatchOutcome struct {
	MatchID string
	Rows    []model.PlayerMatchStat
	Team    model.Team
	Won     bool
}

// GroupByMatch splits rows into matches, preserving the order in which match
// ids first appear, and locates p's team and result in each.
func GroupByMatch(rows []model.PlayerMatchStat, p model.Player) []MatchOutcome {
	var out []MatchOutcome
	idx := make(map[string]int)
	for _, r := range rows {
		i, ok := idx[r.MatchID]
		if !ok {
			i = len(out)
			idx[r.MatchID] = i
			out = append(out, MatchOutcome{MatchID: r.MatchID, Team: model.TeamUnknown})
		}
		out[i].Rows = append(out[i].Rows, r)
		if p.Matches(r) {
			out[i].Team = r.Team
			out[i].Won = r.Won
		}
	}
	return out
}

func ownRows(rows []model.PlayerMatchStat, trackedID string) []model.PlayerMatchStat {
	var own []model.PlayerMatchStat
	for _, r := range rows {
		if r.PlayerID == trackedID {
			own = append(own, r)
		}
	}
	return own
}

// groupBy reduces rows into one GroupStats per key. Groups are ordered by
// distinct match count descending, then by key.
func groupBy(rows []model.PlayerMatchStat, key func(*model.PlayerMatchStat) string) []model.GroupStats {
	type accum struct {
		matches map[string]struct{}
		rows    int
		wins    int

		kills, deaths, assists, kda  float64
		damage, healing, shield, lvl float64
	}
	byKey := make(map[string]*accum)

	// ---- Pass 1: sums per key. ----
	for i := range rows {
		r := &rows[i]
		k := key(r)
		a := byKey[k]
		if a == nil {
			a = &accum{matches: make(map[string]struct{})}
			byKey[k] = a
		}
		a.matches[r.MatchID] = struct{}{}
		a.rows++
		if r.Won {
			a.wins++
		}
		a.kills += float64(r.Kills)
		a.deaths += float64(r.Deaths)
		a.assists += float64(r.Assists)
		a.kda += r.KDA
		a.damage += float64(r.DamageDealt)
		a.healing += float64(r.Healing)
		a.shield += float64(r.Shielding)
		a.lvl += float64(r.Level)
	}

	// ---- Pass 2: means. ----
	out := make([]model.GroupStats, 0, len(byKey))
	for k, a := range byKey {
		n := float64(a.rows)
		out = append(out, model.GroupStats{
			Key:            k,
			Matches:        len(a.matches),
			Wins:           a.wins,
			AvgKills:       a.kills / n,
			AvgDeaths:      a.deaths / n,
			AvgAssists:     a.assists / n,
			AvgKDA:         a.kda / n,
			AvgDamageDealt: a.damage / n,
			AvgHealing:     a.healing / n,
			AvgShielding:   a.shield / n,
			AvgLevel:       a.lvl / n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].Key < out[j].Key
	})
	return out
}
