package aggregator

import (
	"sort"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

// Relationships accumulates with/against counters for one tracked player.
type Relationships struct {
	trackedID string
	byID      map[string]*model.RelationshipCounter
	order     []string // first-seen order, used as the final tie-breaker
}

// NewRelationships returns an empty accumulator for trackedID.
func NewRelationships(trackedID string) *Relationships {
	return &Relationships{
		trackedID: trackedID,
		byID:      make(map[string]*model.RelationshipCounter),
	}
}

// Counter returns the counter for id, creating it with name on first use.
// Later calls never change the stored name.
func (r *Relationships) Counter(id, name string) *model.RelationshipCounter {
	if c, ok := r.byID[id]; ok {
		return c
	}
	c := &model.RelationshipCounter{PlayerID: id, Name: name}
	r.byID[id] = c
	r.order = append(r.order, id)
	return c
}

// Observe folds one match into the counters. team and won describe the
// tracked player; matches where the team is unknown are ignored, as are rows
// without a resolved profile id and the tracked player's own row.
func (r *Relationships) Observe(rows []model.PlayerMatchStat, team model.Team, won bool) {
	if team == model.TeamUnknown {
		return
	}
	for i := range rows {
		row := &rows[i]
		if !row.HasResolvedID() || row.PlayerID == r.trackedID {
			continue
		}
		c := r.Counter(row.PlayerID, row.PlayerName)
		if row.Team == team {
			c.WithGames++
			if won {
				c.WithWins++
			}
			continue
		}
		c.VsGames++
		if won {
			c.VsWins++
		} else {
			c.VsLosses++
		}
	}
}

// Len is the number of distinct players encountered.
func (r *Relationships) Len() int {
	return len(r.order)
}

// Ranked returns every counter ordered by total interactions, then games
// together, both descending. Equal counters keep first-seen order.
func (r *Relationships) Ranked() []model.RelationshipCounter {
	out := make([]model.RelationshipCounter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].TotalInteractions(), out[j].TotalInteractions()
		if ti != tj {
			return ti > tj
		}
		return out[i].WithGames > out[j].WithGames
	})
	return out
}

// TopTeammates returns the first n ranked counters with at least one game
// together. n <= 0 means no limit.
func TopTeammates(ranked []model.RelationshipCounter, n int) []model.RelationshipCounter {
	var out []model.RelationshipCounter
	for _, c := range ranked {
		if c.WithGames > 0 {
			out = append(out, c)
		}
	}
	return limit(out, n)
}

// TopOpponents returns the n counters with the most games against the
// tracked player. n <= 0 means no limit.
func TopOpponents(ranked []model.RelationshipCounter, n int) []model.RelationshipCounter {
	var out []model.RelationshipCounter
	for _, c := range ranked {
		if c.VsGames > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VsGames > out[j].VsGames
	})
	return limit(out, n)
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
