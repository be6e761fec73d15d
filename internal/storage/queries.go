package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/optisebas/paladins-match-analyzer/internal/model"
)

const statColumns = `
	p.match_id, m.map_name, m.match_time,
	p.player_id, p.player_name, p.champion, p.team_idx, p.won,
	p.level, p.kills, p.deaths, p.assists, p.kda,
	p.credits, p.cpm, p.damage_dealt, p.damage_taken, p.shielding, p.healing`

// Exists returns true if a match with the given id is already stored.
func (db *DB) Exists(matchID string) (bool, error) {
	if !db.known.TestString(matchID) {
		return false, nil
	}
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save stores a match and its player rows in one transaction. The match row
// is inserted only if absent; player rows are always appended, so saving a
// known match again leaves duplicate rows behind.
func (db *DB) Save(rec model.MatchRecord, stats []model.PlayerMatchStat) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO matches(match_id, map_name, match_time) VALUES (?, ?, ?)",
		rec.MatchID, rec.MapName, formatTime(rec.Time),
	); err != nil {
		return fmt.Errorf("insert match %s: %w", rec.MatchID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO player_match_stats(
			match_id, player_id, player_name, champion, team_idx, won,
			level, kills, deaths, assists, kda,
			credits, cpm, damage_dealt, damage_taken, shielding, healing
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err = stmt.Exec(
			rec.MatchID, s.PlayerID, s.PlayerName, s.Champion, int(s.Team), boolInt(s.Won),
			s.Level, s.Kills, s.Deaths, s.Assists, s.KDA,
			s.Credits, s.CPM, s.DamageDealt, s.DamageTaken, s.Shielding, s.Healing,
		)
		if err != nil {
			return fmt.Errorf("insert player_match_stats for %s/%s: %w", rec.MatchID, s.PlayerName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	db.known.AddString(rec.MatchID)
	return nil
}

// ListMatches returns all stored matches, newest first. Matches without a
// timestamp sort last.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT m.match_id, m.map_name, m.match_time, COUNT(DISTINCT p.player_id)
		FROM matches m
		LEFT JOIN player_match_stats p ON p.match_id = m.match_id
		GROUP BY m.match_id
		ORDER BY m.match_time IS NULL, m.match_time DESC, m.match_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		var mapName, ts sql.NullString
		if err := rows.Scan(&s.MatchID, &mapName, &ts, &s.Players); err != nil {
			return nil, err
		}
		s.MapName = mapName.String
		s.Time = parseTime(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	var s model.MatchSummary
	var mapName, ts sql.NullString
	err := db.conn.QueryRow(`
		SELECT match_id, map_name, match_time
		FROM matches WHERE match_id LIKE ? ORDER BY match_id LIMIT 1`, prefix+"%").
		Scan(&s.MatchID, &mapName, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.MapName = mapName.String
	s.Time = parseTime(ts)
	return &s, nil
}

// GetMatchStats returns every stored row for a match, in insertion order.
func (db *DB) GetMatchStats(matchID string) ([]model.PlayerMatchStat, error) {
	return db.queryStats(`
		SELECT `+statColumns+`
		FROM player_match_stats p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.match_id = ?
		ORDER BY p.stat_id`, matchID)
}

// GetPlayerHistory returns the latest stored row of a player for every match
// they appear in, newest match first.
func (db *DB) GetPlayerHistory(playerID string) ([]model.PlayerMatchStat, error) {
	return db.queryStats(`
		SELECT `+statColumns+`
		FROM player_match_stats p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.stat_id IN (
			SELECT MAX(stat_id) FROM player_match_stats
			WHERE player_id = ?
			GROUP BY match_id
		)
		ORDER BY CAST(p.match_id AS INTEGER) DESC`, playerID)
}

// GetRowsWithPlayer returns all rows of every stored match the player took
// part in. Reanalysis duplicates are collapsed to the latest row per player
// per match. Rows are grouped by match, newest match first.
func (db *DB) GetRowsWithPlayer(playerID string) ([]model.PlayerMatchStat, error) {
	return db.queryStats(`
		SELECT `+statColumns+`
		FROM player_match_stats p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.match_id IN (SELECT match_id FROM player_match_stats WHERE player_id = ?)
		  AND p.stat_id IN (
			SELECT MAX(stat_id) FROM player_match_stats
			GROUP BY match_id, player_id, LOWER(player_name)
		)
		ORDER BY CAST(p.match_id AS INTEGER) DESC, p.stat_id`, playerID)
}

func (db *DB) queryStats(query string, args ...any) ([]model.PlayerMatchStat, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerMatchStat
	for rows.Next() {
		var s model.PlayerMatchStat
		var mapName, ts sql.NullString
		var team, won int
		if err := rows.Scan(
			&s.MatchID, &mapName, &ts,
			&s.PlayerID, &s.PlayerName, &s.Champion, &team, &won,
			&s.Level, &s.Kills, &s.Deaths, &s.Assists, &s.KDA,
			&s.Credits, &s.CPM, &s.DamageDealt, &s.DamageTaken, &s.Shielding, &s.Healing,
		); err != nil {
			return nil, err
		}
		s.MapName = mapName.String
		s.MatchTime = parseTime(ts)
		s.Team = model.Team(team)
		s.Won = won != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
