package storage

import (
	"database/sql"
	"fmt"
)

// Overview is a high-level picture of the store's contents.
type Overview struct {
	TotalMatches  int
	TotalRows     int
	UniquePlayers int
	UniqueMaps    int
	EarliestMatch string
	LatestMatch   string
}

// MapCount is the number of stored matches on one map.
type MapCount struct {
	MapName string
	Matches int
}

// PlayerCount summarizes one player's stored appearances.
type PlayerCount struct {
	PlayerID string
	Name     string
	Matches  int
	AvgKDA   float64
	WinPct   float64
}

// GetOverview returns store-wide counts.
func (db *DB) GetOverview() (Overview, error) {
	var ov Overview
	var earliest, latest sql.NullString
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COUNT(DISTINCT map_name), MIN(match_time), MAX(match_time)
		FROM matches`).Scan(&ov.TotalMatches, &ov.UniqueMaps, &earliest, &latest)
	if err != nil {
		return ov, fmt.Errorf("count matches: %w", err)
	}
	ov.EarliestMatch = earliest.String
	ov.LatestMatch = latest.String

	err = db.conn.QueryRow(`
		SELECT COUNT(1), COUNT(DISTINCT player_id) FROM player_match_stats`).
		Scan(&ov.TotalRows, &ov.UniquePlayers)
	if err != nil {
		return ov, fmt.Errorf("count rows: %w", err)
	}
	return ov, nil
}

// GetMapCounts returns match counts per map, most played first.
func (db *DB) GetMapCounts() ([]MapCount, error) {
	rows, err := db.conn.Query(`
		SELECT COALESCE(map_name, ''), COUNT(1) FROM matches
		GROUP BY map_name ORDER BY COUNT(1) DESC, map_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MapCount
	for rows.Next() {
		var m MapCount
		if err := rows.Scan(&m.MapName, &m.Matches); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetTopPlayersByMatches returns the most frequently seen identified players.
func (db *DB) GetTopPlayersByMatches(limit int) ([]PlayerCount, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, MAX(player_name), COUNT(DISTINCT match_id), AVG(kda), AVG(won) * 100
		FROM player_match_stats
		WHERE player_id NOT IN ('', 'NO_ID', 'ERROR')
		GROUP BY player_id
		ORDER BY COUNT(DISTINCT match_id) DESC, player_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerCount
	for rows.Next() {
		var p PlayerCount
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Matches, &p.AvgKDA, &p.WinPct); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
