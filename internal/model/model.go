package model

import (
	"math"
	"strings"
	"time"
)

// Sentinels used when a player's identity cannot be resolved from the page.
const (
	NoPlayerID      = "NO_ID"
	ErrorPlayerID   = "ERROR"
	UnknownPlayer   = "UnknownPlayer"
	UnknownChampion = "Unknown"
	UnknownMap      = "Unknown Map"
)

// Team is the side a player belonged to in a match. The site renders one stat
// table per side, so the index is derived from the table's win/loss class.
type Team int

const (
	TeamUnknown Team = -1
	TeamLoss    Team = 0
	TeamWin     Team = 1
)

func (t Team) String() string {
	switch t {
	case TeamLoss:
		return "0"
	case TeamWin:
		return "1"
	default:
		return "?"
	}
}

// TeamFromWin maps a table's win flag onto a team index.
func TeamFromWin(won bool) Team {
	if won {
		return TeamWin
	}
	return TeamLoss
}

// Player identifies a tracked profile.
type Player struct {
	ID   string
	Name string
}

// Matches reports whether a stat row belongs to p, by identifier or by
// case-insensitive name.
func (p Player) Matches(s PlayerMatchStat) bool {
	return s.PlayerID == p.ID || strings.EqualFold(s.PlayerName, p.Name)
}

// MatchRecord is the per-match metadata row.
type MatchRecord struct {
	MatchID string
	MapName string
	Time    *time.Time
}

// PlayerMatchStat is one player's line in one match.
type PlayerMatchStat struct {
	MatchID    string
	PlayerID   string
	PlayerName string
	Champion   string
	MapName    string     // populated from the match record
	MatchTime  *time.Time // populated from the match record
	Team       Team
	Won        bool

	Level   int
	Kills   int
	Deaths  int
	Assists int
	KDA     float64

	Credits     int
	CPM         int
	DamageDealt int
	DamageTaken int
	Shielding   int
	Healing     int
}

// HasResolvedID reports whether the row carries a real profile identifier.
func (s *PlayerMatchStat) HasResolvedID() bool {
	return s.PlayerID != "" && s.PlayerID != NoPlayerID && s.PlayerID != ErrorPlayerID
}

// KDA returns (kills+assists)/max(deaths,1) rounded to two decimals.
func KDA(kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	return math.Round(float64(kills+assists)/float64(d)*100) / 100
}

// RelationshipCounter tallies the games the tracked player shared with one
// other player.
type RelationshipCounter struct {
	PlayerID string
	Name     string

	WithGames int
	WithWins  int
	VsGames   int
	VsWins    int // tracked player's wins when opposing
	VsLosses  int // tracked player's losses when opposing
}

func (r *RelationshipCounter) WithLosses() int {
	return r.WithGames - r.WithWins
}

// WithWinRate is the percentage of shared-team games that were won.
func (r *RelationshipCounter) WithWinRate() float64 {
	if r.WithGames == 0 {
		return 0
	}
	return float64(r.WithWins) / float64(r.WithGames) * 100
}

// VsWinRate is the tracked player's win percentage against this player.
func (r *RelationshipCounter) VsWinRate() float64 {
	if r.VsGames == 0 {
		return 0
	}
	return float64(r.VsWins) / float64(r.VsGames) * 100
}

func (r *RelationshipCounter) TotalInteractions() int {
	return r.WithGames + r.VsGames
}

// GroupStats is one row of a champion or map summary for the tracked player.
type GroupStats struct {
	Key     string // champion or map name
	Matches int    // distinct matches
	Wins    int

	AvgKills       float64
	AvgDeaths      float64
	AvgAssists     float64
	AvgKDA         float64
	AvgDamageDealt float64
	AvgHealing     float64
	AvgShielding   float64
	AvgLevel       float64
}

func (g *GroupStats) WinRate() float64 {
	if g.Matches == 0 {
		return 0
	}
	return float64(g.Wins) / float64(g.Matches) * 100
}

// RunSummary holds the tracked player's headline numbers for one run.
type RunSummary struct {
	Matches int // matches where the tracked player's team was resolved
	Wins    int

	// Averages over the tracked player's rows; zero when there are none.
	Rows         int
	AvgKDA       float64
	AvgKills     float64
	AvgDeaths    float64
	AvgAssists   float64
	AvgDamage    float64
	AvgHealing   float64
	AvgShielding float64
	AvgCredits   float64
}

func (s *RunSummary) WinRate() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Matches) * 100
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID string
	MapName string
	Time    *time.Time
	Players int
}
