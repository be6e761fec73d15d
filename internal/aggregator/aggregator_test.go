package aggregator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

const trackedID = "1"

var trackedPlayer = model.Player{ID: trackedID, Name: "Main"}

func row(matchID, id, name string, team model.Team, won bool) model.PlayerMatchStat {
	return model.PlayerMatchStat{MatchID: matchID, PlayerID: id, PlayerName: name, Team: team, Won: won}
}

// threeMatches is a fixed history for the tracked player:
//
//	m1: tracked wins on team 1 with Alpha; Bravo opposes.
//	m2: tracked loses on team 0 with Bravo; Alpha and Charlie oppose.
//	m3: tracked wins on team 1 with Alpha; Charlie opposes.
func threeMatches() [][]model.PlayerMatchStat {
	w, l := model.TeamWin, model.TeamLoss
	return [][]model.PlayerMatchStat{
		{
			row("m1", trackedID, "Main", w, true),
			row("m1", "2", "Alpha", w, true),
			row("m1", "3", "Bravo", l, false),
			row("m1", model.NoPlayerID, "hidden", w, true),
			row("m1", model.ErrorPlayerID, "broken", l, false),
		},
		{
			row("m2", trackedID, "Main", l, false),
			row("m2", "2", "Alpha", w, true),
			row("m2", "3", "Bravo", l, false),
			row("m2", "4", "Charlie", w, true),
		},
		{
			row("m3", trackedID, "Main", w, true),
			row("m3", "2", "AlphaRenamed", w, true),
			row("m3", "4", "Charlie", l, false),
		},
	}
}

func observeAll(r *Relationships) {
	outcomes := []struct {
		team model.Team
		won  bool
	}{{model.TeamWin, true}, {model.TeamLoss, false}, {model.TeamWin, true}}
	for i, rows := range threeMatches() {
		r.Observe(rows, outcomes[i].team, outcomes[i].won)
	}
}

func TestRelationshipCounts(t *testing.T) {
	r := NewRelationships(trackedID)
	observeAll(r)
	// Unresolved matches contribute nothing.
	r.Observe([]model.PlayerMatchStat{row("m4", "9", "Zulu", model.TeamWin, true)}, model.TeamUnknown, false)

	want := []model.RelationshipCounter{
		{PlayerID: "2", Name: "Alpha", WithGames: 2, WithWins: 2, VsGames: 1, VsWins: 0, VsLosses: 1},
		{PlayerID: "3", Name: "Bravo", WithGames: 1, WithWins: 0, VsGames: 1, VsWins: 1, VsLosses: 0},
		{PlayerID: "4", Name: "Charlie", WithGames: 0, WithWins: 0, VsGames: 2, VsWins: 1, VsLosses: 1},
	}
	got := r.Ranked()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranked mismatch (-want +got):\n%s", diff)
	}

	rates := []struct {
		with, vs float64
		total    int
	}{
		{100, 0, 3},
		{0, 100, 2},
		{0, 50, 2},
	}
	for i, c := range got {
		if c.WithWinRate() != rates[i].with || c.VsWinRate() != rates[i].vs || c.TotalInteractions() != rates[i].total {
			t.Errorf("%s: want with=%.0f vs=%.0f total=%d, got with=%.2f vs=%.2f total=%d",
				c.Name, rates[i].with, rates[i].vs, rates[i].total, c.WithWinRate(), c.VsWinRate(), c.TotalInteractions())
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len: want 3, got %d", r.Len())
	}
}

func TestCounterGetOrCreate(t *testing.T) {
	r := NewRelationships(trackedID)
	c := r.Counter("7", "First")
	c.WithGames = 4
	again := r.Counter("7", "Second")
	if again != c {
		t.Fatal("Counter should return the existing counter")
	}
	if again.Name != "First" || again.WithGames != 4 {
		t.Errorf("want preserved counter, got %+v", *again)
	}
}

func TestLeaderboards(t *testing.T) {
	r := NewRelationships(trackedID)
	observeAll(r)
	ranked := r.Ranked()

	names := func(cs []model.RelationshipCounter) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}
	if diff := cmp.Diff([]string{"Alpha", "Bravo"}, names(TopTeammates(ranked, 10))); diff != "" {
		t.Errorf("teammates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Charlie", "Alpha", "Bravo"}, names(TopOpponents(ranked, 0))); diff != "" {
		t.Errorf("opponents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Charlie"}, names(TopOpponents(ranked, 1))); diff != "" {
		t.Errorf("top-1 opponents mismatch (-want +got):\n%s", diff)
	}
}

func ownRow(matchID, champ, mapName string, won bool, k, d, a int) model.PlayerMatchStat {
	return model.PlayerMatchStat{
		MatchID: matchID, PlayerID: trackedID, PlayerName: "Main", Champion: champ, MapName: mapName,
		Won: won, Kills: k, Deaths: d, Assists: a, KDA: model.KDA(k, d, a),
	}
}

func statRows() []model.PlayerMatchStat {
	return []model.PlayerMatchStat{
		ownRow("m1", "Androxus", "Frog Isle", true, 10, 2, 5),
		ownRow("m2", "Androxus", "Frog Isle", false, 4, 4, 0),
		ownRow("m3", "Seris", "Ice Mines", true, 1, 1, 20),
		{MatchID: "m1", PlayerID: "2", Champion: "Seris", MapName: "Frog Isle", Kills: 99},
	}
}

func TestChampionStats(t *testing.T) {
	got := ChampionStats(statRows(), trackedID)
	want := []model.GroupStats{
		{Key: "Androxus", Matches: 2, Wins: 1, AvgKills: 7, AvgDeaths: 3, AvgAssists: 2.5, AvgKDA: 4.25},
		{Key: "Seris", Matches: 1, Wins: 1, AvgKills: 1, AvgDeaths: 1, AvgAssists: 20, AvgKDA: 21},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("champion stats mismatch (-want +got):\n%s", diff)
	}
	if wr := got[0].WinRate(); wr != 50 {
		t.Errorf("Androxus win rate: want 50, got %.2f", wr)
	}
	if top := Top(got, 1); len(top) != 1 || top[0].Key != "Androxus" {
		t.Errorf("Top(1): unexpected %+v", top)
	}
}

func TestMapStats(t *testing.T) {
	got, ok := MapStats(statRows(), trackedID)
	if !ok {
		t.Fatal("expected map stats for two maps")
	}
	if len(got) != 2 || got[0].Key != "Frog Isle" || got[0].Matches != 2 {
		t.Errorf("unexpected map stats %+v", got)
	}

	single := []model.PlayerMatchStat{ownRow("m1", "A", "Frog Isle", true, 1, 1, 1)}
	if _, ok := MapStats(single, trackedID); ok {
		t.Error("single map should not produce a table")
	}

	unknown := []model.PlayerMatchStat{
		ownRow("m1", "A", model.UnknownMap, true, 1, 1, 1),
		ownRow("m2", "A", model.UnknownMap, true, 1, 1, 1),
		ownRow("m3", "A", "Ice Mines", true, 1, 1, 1),
	}
	if _, ok := MapStats(unknown, trackedID); ok {
		t.Error("mostly unknown maps should not produce a table")
	}

	tie := []model.PlayerMatchStat{
		ownRow("m1", "A", model.UnknownMap, true, 1, 1, 1),
		ownRow("m2", "A", "Bazaar", true, 1, 1, 1),
	}
	if _, ok := MapStats(tie, trackedID); !ok {
		t.Error("a tie resolves to the smallest name, which is a known map")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(statRows(), trackedID, 3, 2)
	if s.Rows != 3 || s.AvgKills != 5 {
		t.Errorf("want 3 rows averaging 5 kills, got %+v", s)
	}
	if math.Abs(s.AvgKDA-(7.5+1+21)/3) > 1e-9 {
		t.Errorf("AvgKDA: got %.4f", s.AvgKDA)
	}
	if math.Abs(s.WinRate()-66.6667) > 0.001 {
		t.Errorf("WinRate: got %.4f", s.WinRate())
	}

	empty := Summarize(nil, trackedID, 0, 0)
	if empty.Rows != 0 || empty.WinRate() != 0 {
		t.Errorf("empty summary: got %+v", empty)
	}
}

func TestGroupByMatch(t *testing.T) {
	var rows []model.PlayerMatchStat
	for _, m := range threeMatches() {
		rows = append(rows, m...)
	}
	got := GroupByMatch(rows, trackedPlayer)
	if len(got) != 3 {
		t.Fatalf("want 3 matches, got %d", len(got))
	}
	if got[1].MatchID != "m2" || got[1].Team != model.TeamLoss || got[1].Won {
		t.Errorf("m2: unexpected outcome %+v", got[1])
	}

	r := NewRelationships(trackedID)
	for _, o := range got {
		r.Observe(o.Rows, o.Team, o.Won)
	}
	direct := NewRelationships(trackedID)
	observeAll(direct)
	if diff := cmp.Diff(direct.Ranked(), r.Ranked()); diff != "" {
		t.Errorf("replayed counters differ (-direct +replayed):\n%s", diff)
	}
}
