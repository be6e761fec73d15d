// Package pipeline runs the crawl, parse and aggregate steps for one player.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/optisebas/paladins-match-analyzer/internal/aggregator"
	"github.com/optisebas/paladins-match-analyzer/internal/config"
	"github.com/optisebas/paladins-match-analyzer/internal/crawler"
	"github.com/optisebas/paladins-match-analyzer/internal/fetch"
	"github.com/optisebas/paladins-match-analyzer/internal/model"
	"github.com/optisebas/paladins-match-analyzer/internal/page"
	"github.com/optisebas/paladins-match-analyzer/internal/parser"
)

// skipDelay is the pause after a match that needed no network call.
const skipDelay = 100 * time.Millisecond

// Store is the persistence the pipeline uses: the parser's cache plus the
// read needed for the "all" aggregation scope.
type Store interface {
	parser.Store
	GetRowsWithPlayer(playerID string) ([]model.PlayerMatchStat, error)
}

// Deps are the collaborators of an Analyzer. Store may be nil, which
// disables caching, persistence and the "all" scope.
type Deps struct {
	Fetcher fetch.Fetcher
	Pages   page.Model
	Store   Store
	Sleeper fetch.Sleeper
	Logger  *slog.Logger
	Now     func() time.Time
}

// Analyzer holds everything one analysis run needs.
type Analyzer struct {
	crawler *crawler.Crawler
	parser  *parser.Parser
	store   Store
	sleep   fetch.Sleeper
	general config.General
	log     *slog.Logger
}

// New wires an Analyzer from settings and collaborators.
func New(cfg config.Config, d Deps) *Analyzer {
	if d.Sleeper == nil {
		d.Sleeper = fetch.WallClock
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Pages == nil {
		d.Pages = page.Guru{}
	}
	g := cfg.General

	var ps parser.Store
	if d.Store != nil {
		ps = d.Store
	}
	return &Analyzer{
		crawler: crawler.New(d.Fetcher, d.Pages, d.Sleeper, crawler.Options{
			BaseURL:    g.BaseURL,
			MaxPages:   g.MaxHistoryPagesToScan,
			MaxMatches: g.MaxMatches(),
			Delay:      g.RequestDelay(),
		}, d.Logger),
		parser: parser.New(d.Fetcher, d.Pages, ps, parser.Options{
			Force: cfg.Database.ForceFullReanalysis,
			Now:   d.Now,
		}, d.Logger),
		store:   d.Store,
		sleep:   d.Sleeper,
		general: g,
		log:     d.Logger,
	}
}

// Report is the outcome of one player's run.
type Report struct {
	// RunID tags every log line of the run.
	RunID  string
	Player model.Player
	Scope  string

	// URLs is the number of match links found in the history.
	URLs int
	// Rows are the per-player rows parsed in this run.
	Rows []model.PlayerMatchStat
	// Aggregated is the number of rows the tables below were built from.
	Aggregated int

	Relationships []model.RelationshipCounter // ranked
	Champions     []model.GroupStats          // nil when disabled
	Maps          []model.GroupStats          // nil when disabled or not meaningful
	Summary       model.RunSummary
}

// Empty reports whether there is nothing to show or export.
func (r *Report) Empty() bool {
	return r.Aggregated == 0
}

// Run analyzes p end to end. Per-page and per-match failures are logged and
// skipped; Run fails only when ctx is done.
func (a *Analyzer) Run(ctx context.Context, p model.Player) (*Report, error) {
	runID := uuid.NewString()
	log := a.log.With("run_id", runID, "player", p.Name, "player_id", p.ID)
	log.Info("starting analysis")

	rep := &Report{RunID: runID, Player: p, Scope: a.general.AggregationScope}
	urls, err := a.crawler.Crawl(ctx, p)
	if err != nil {
		return nil, err
	}
	rep.URLs = len(urls)
	if len(urls) == 0 {
		log.Error("no match URLs found")
		return rep, nil
	}

	rel := aggregator.NewRelationships(p.ID)
	var matches, wins int
	for i, u := range urls {
		out := a.parser.Parse(ctx, u, p)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wait := a.general.RequestDelay()
		if len(out.Rows) == 0 {
			log.Info("match skipped", "n", i+1, "of", len(urls), "match_id", out.MatchID)
			wait = skipDelay
		} else {
			rep.Rows = append(rep.Rows, out.Rows...)
			if out.Resolved() {
				matches++
				if out.Won {
					wins++
				}
				rel.Observe(out.Rows, out.Team, out.Won)
			}
			log.Debug("match parsed", "n", i+1, "of", len(urls), "match_id", out.MatchID, "rows", len(out.Rows))
		}
		if err := a.sleep.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	rows := rep.Rows
	if rep.Scope == config.ScopeAll {
		if stored, ok := a.storedRows(log, p); ok {
			rows = stored
			rel = aggregator.NewRelationships(p.ID)
			matches, wins = 0, 0
			for _, o := range aggregator.GroupByMatch(stored, p) {
				if o.Team == model.TeamUnknown {
					continue
				}
				matches++
				if o.Won {
					wins++
				}
				rel.Observe(o.Rows, o.Team, o.Won)
			}
		} else {
			rep.Scope = config.ScopeRun
		}
	}

	rep.Aggregated = len(rows)
	if rep.Empty() {
		log.Warn("no new matches were analyzed, reports will be empty")
		return rep, nil
	}
	rep.Relationships = rel.Ranked()
	if a.general.AnalyzeChampionStats {
		rep.Champions = aggregator.ChampionStats(rows, p.ID)
	}
	if a.general.AnalyzeMapStats {
		if maps, ok := aggregator.MapStats(rows, p.ID); ok {
			rep.Maps = maps
		}
	}
	rep.Summary = aggregator.Summarize(rows, p.ID, matches, wins)
	log.Info("analysis finished", "matches", matches, "wins", wins, "rows", len(rep.Rows),
		"relationships", rel.Len(), "scope", rep.Scope)
	return rep, nil
}

func (a *Analyzer) storedRows(log *slog.Logger, p model.Player) ([]model.PlayerMatchStat, bool) {
	if a.store == nil {
		log.Warn("aggregation scope \"all\" needs the database, using this run only")
		return nil, false
	}
	rows, err := a.store.GetRowsWithPlayer(p.ID)
	if err != nil {
		log.Error("load stored rows failed, using this run only", "err", err)
		return nil, false
	}
	return rows, true
}
