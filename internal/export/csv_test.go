package export

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), bom), "file should start with a BOM")
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(b), bom))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFileName(t *testing.T) {
	if got := FileName("stats", "Some Player Name"); got != "stats_Some_Player_Name.csv" {
		t.Errorf("FileName: got %q", got)
	}
}

func TestMatchStats(t *testing.T) {
	when := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := []model.PlayerMatchStat{{
		MatchID: "55", PlayerName: "Foo, Jr", PlayerID: "9", Champion: "Androxus", MapName: "Frog Isle",
		MatchTime: &when, Team: model.TeamWin, Won: true, Level: 40, Kills: 10, Deaths: 2, Assists: 5,
		KDA: 7.5, Credits: 12000, CPM: 600, DamageDealt: 90000, DamageTaken: 50000, Shielding: 100, Healing: 2000,
	}}
	path, err := Writer{Dir: t.TempDir()}.MatchStats("Foo Jr", rows)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "stats_Foo_Jr.csv"))

	got := readCSV(t, path)
	want := [][]string{
		{"MatchID", "PlayerName", "PlayerID", "Champion", "MapName", "MatchDateTime", "TeamIdx", "WonMatch",
			"Level", "Kills", "Deaths", "Assists", "KDA", "Credits", "CPM", "DamageDealt", "DamageTaken", "Shielding", "Healing"},
		{"55", "Foo, Jr", "9", "Androxus", "Frog Isle", "2024-06-01T10:00:00Z", "1", "true",
			"40", "10", "2", "5", "7.5", "12000", "600", "90000", "50000", "100", "2000"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRelationshipsWrittenWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	path, err := Writer{Dir: dir}.Relationships("p", nil)
	require.NoError(t, err)
	got := readCSV(t, path)
	if len(got) != 1 || got[0][0] != "OtherPlayerID" || len(got[0]) != 11 {
		t.Errorf("want header only, got %v", got)
	}
}

func TestRelationshipsColumns(t *testing.T) {
	ranked := []model.RelationshipCounter{{PlayerID: "2", Name: "Alpha", WithGames: 4, WithWins: 1, VsGames: 2, VsWins: 1, VsLosses: 1}}
	path, err := Writer{Dir: t.TempDir()}.Relationships("p", ranked)
	require.NoError(t, err)
	got := readCSV(t, path)
	want := []string{"2", "Alpha", "4", "1", "3", "25", "2", "1", "1", "50", "6"}
	if diff := cmp.Diff(want, got[1]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupTables(t *testing.T) {
	w := Writer{Dir: t.TempDir()}
	groups := []model.GroupStats{{Key: "Seris", Matches: 2, Wins: 1, AvgKDA: 3.5, AvgHealing: 100000}}

	path, err := w.Champions("p", groups)
	require.NoError(t, err)
	champs := readCSV(t, path)
	if champs[1][0] != "Seris" || champs[1][3] != "50" || champs[1][9] != "100000" {
		t.Errorf("unexpected champion row %v", champs[1])
	}

	path, err = w.Maps("p", groups)
	require.NoError(t, err)
	maps := readCSV(t, path)
	if diff := cmp.Diff([]string{"MapName", "P", "V", "WR (%)", "KDA_avg", "Dmg", "H"}, maps[0]); diff != "" {
		t.Errorf("map header mismatch (-want +got):\n%s", diff)
	}
}
