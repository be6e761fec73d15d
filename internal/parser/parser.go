package parser

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/optisebas/paladins-match-analyzer/internal/fetch"
	"github.com/optisebas/paladins-match-analyzer/internal/model"
	"github.com/optisebas/paladins-match-analyzer/internal/page"
)

// Store is the persistence the parser needs: an existence check for the
// cache and an append-only save.
type Store interface {
	Exists(matchID string) (bool, error)
	Save(rec model.MatchRecord, rows []model.PlayerMatchStat) error
}

// Outcome is the result of parsing one match. A skipped, unreachable or
// unusable match yields an Outcome with no rows and TeamUnknown.
type Outcome struct {
	MatchID string
	Rows    []model.PlayerMatchStat
	Team    model.Team // tracked player's team, TeamUnknown if not found
	Won     bool
}

// Resolved reports whether the tracked player's team is known.
func (o Outcome) Resolved() bool {
	return o.Team != model.TeamUnknown
}

// Options tunes a Parser.
type Options struct {
	// Force re-fetches and re-saves matches already in the store.
	Force bool
	// Now is the clock used to resolve relative timestamps.
	Now func() time.Time
}

// Parser turns match-detail pages into per-player rows.
type Parser struct {
	fetch fetch.Fetcher
	pages page.Model
	store Store // nil disables caching and persistence
	opts  Options
	log   *slog.Logger
}

// New returns a Parser. store may be nil.
func New(f fetch.Fetcher, pages page.Model, store Store, opts Options, log *slog.Logger) *Parser {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Parser{fetch: f, pages: pages, store: store, opts: opts, log: log}
}

// Parse fetches and extracts one match for the tracked player p. Matches
// already stored are skipped without a network call unless Force is set.
func (ps *Parser) Parse(ctx context.Context, matchURL string, p model.Player) Outcome {
	matchID := page.MatchIDFromURL(matchURL)
	out := Outcome{MatchID: matchID, Team: model.TeamUnknown}
	log := ps.log.With("match_id", matchID)

	if ps.store != nil && !ps.opts.Force {
		known, err := ps.store.Exists(matchID)
		if err != nil {
			log.Error("cache lookup failed", "err", err)
		} else if known {
			log.Info("match already stored, skipping")
			return out
		}
	}

	log.Info("analyzing match", "url", matchURL)
	body, err := ps.fetch.Fetch(ctx, matchURL)
	if err != nil {
		log.Warn("match fetch failed", "err", err)
		return out
	}

	mp, err := ps.pages.Match(body)
	rec := model.MatchRecord{
		MatchID: matchID,
		MapName: mp.MapName,
		Time:    ps.matchTime(mp),
	}
	if rec.MapName == "" {
		rec.MapName = model.UnknownMap
	}
	if err != nil {
		if errors.Is(err, page.ErrNoStatsSection) {
			log.Error("stats section not found", "url", matchURL)
		} else {
			log.Error("match page unreadable", "url", matchURL, "err", err)
		}
		return out
	}

	out.Rows = mergeTables(matchID, mp.Tables, log)
	for i := range out.Rows {
		out.Rows[i].MapName = rec.MapName
		out.Rows[i].MatchTime = rec.Time
		if p.Matches(out.Rows[i]) {
			out.Team = out.Rows[i].Team
			out.Won = out.Rows[i].Won
		}
	}
	if !out.Resolved() {
		log.Warn("tracked player not found in match", "player", p.Name, "player_id", p.ID)
	}

	if len(out.Rows) > 0 && ps.store != nil {
		if err := ps.store.Save(rec, out.Rows); err != nil {
			log.Error("save match failed", "err", err)
		}
	}
	return out
}

func (ps *Parser) matchTime(mp page.MatchPage) *time.Time {
	if mp.TimeAgo != "" {
		if t := page.RelativeTime(mp.TimeAgo, ps.opts.Now()); t != nil {
			return t
		}
	}
	if mp.TimeISO != "" {
		if t := page.ISOTime(mp.TimeISO); t != nil {
			return t
		}
		ps.log.Debug("unparseable match datetime", "datetime", mp.TimeISO)
	}
	return nil
}

// entry accumulates one player's fields across stat tables.
type entry struct {
	stat    model.PlayerMatchStat
	stamped bool
}

// mergeTables folds every table's rows into one record per player, keyed by
// profile id or, failing that, lowercased name. Records are returned in
// first-seen order.
func mergeTables(matchID string, tables []page.StatTable, log *slog.Logger) []model.PlayerMatchStat {
	var order []string
	byKey := make(map[string]*entry)

	for _, table := range tables {
		if table.Kind == page.TableUnknown {
			log.Debug("skipping unrecognised stat table", "rows", len(table.Rows))
			continue
		}
		for _, row := range table.Rows {
			id := page.PlayerIDFromHref(row.Href)
			key := id
			if key == "" {
				key = strings.ToLower(row.Name)
			}

			apply := rowFields(table.Kind, row, id)
			if apply == nil {
				continue
			}
			e, ok := byKey[key]
			if !ok {
				name := key
				if name == "" {
					name = model.UnknownPlayer
				}
				e = &entry{stat: model.PlayerMatchStat{
					MatchID:    matchID,
					PlayerID:   model.NoPlayerID,
					PlayerName: name,
					Champion:   model.UnknownChampion,
					Team:       model.TeamUnknown,
				}}
				byKey[key] = e
				order = append(order, key)
			}
			apply(&e.stat)
			if !e.stamped {
				e.stat.Team = model.TeamFromWin(table.Win)
				e.stat.Won = table.Win
				e.stamped = true
			}
		}
	}

	rows := make([]model.PlayerMatchStat, 0, len(order))
	for _, k := range order {
		rows = append(rows, byKey[k].stat)
	}
	return rows
}

// rowFields returns a function writing the fields a table of the given kind
// contributes, or nil when the row contributes nothing.
func rowFields(kind page.TableKind, row page.PlayerRow, id string) func(*model.PlayerMatchStat) {
	f := row.Fields
	switch kind {
	case page.TableScoreboard:
		if len(f) < 7 {
			return nil
		}
		return func(s *model.PlayerMatchStat) {
			s.Level = page.StatValue(f[0])
			if k, d, a, ok := splitKDA(f[1]); ok {
				s.Kills, s.Deaths, s.Assists = k, d, a
				s.KDA = model.KDA(k, d, a)
			}
			s.Credits = page.StatValue(f[2])
			s.CPM = page.StatValue(f[3])
			s.DamageDealt = page.StatValue(f[4])
			s.DamageTaken = page.StatValue(f[5])
			s.Shielding = page.StatValue(f[6])
			s.Champion = row.Champion
			s.PlayerName = row.Name
			if s.PlayerName == "" {
				s.PlayerName = model.UnknownPlayer
			}
			s.PlayerID = id
			if id == "" {
				s.PlayerID = model.NoPlayerID
			}
		}
	case page.TablePerformance:
		if len(f) < 3 {
			return nil
		}
		return func(s *model.PlayerMatchStat) {
			s.Healing = page.StatValue(f[2])
		}
	}
	return nil
}

// splitKDA parses "k/d/a"; every part must be a plain run of digits.
func splitKDA(s string) (k, d, a int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	var n [3]int
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return 0, 0, 0, false
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		n[i] = v
	}
	return n[0], n[1], n[2], true
}
