package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/aggregator"
	"github.com/optisebas/paladins-match-analyzer/internal/config"
	"github.com/optisebas/paladins-match-analyzer/internal/export"
	"github.com/optisebas/paladins-match-analyzer/internal/fetch"
	"github.com/optisebas/paladins-match-analyzer/internal/model"
	"github.com/optisebas/paladins-match-analyzer/internal/page"
	"github.com/optisebas/paladins-match-analyzer/internal/pipeline"
	"github.com/optisebas/paladins-match-analyzer/internal/report"
	"github.com/optisebas/paladins-match-analyzer/internal/storage"
)

var (
	analyzeForce      bool
	analyzeScope      string
	analyzeMaxMatches int
	analyzeNoCSV      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [profile-url]",
	Short: "Crawl, parse and report on tracked players",
	Long: `Analyze every player in players_to_track, or only the player whose
profile URL is given, e.g.

  paladins analyze https://paladins.guru/profile/123456-PlayerName/matches

Matches already in the database are not fetched again unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "re-fetch matches already stored (turns on force_full_reanalysis)")
	analyzeCmd.Flags().StringVar(&analyzeScope, "scope", "", `aggregation scope, "run" or "all" (overrides aggregation_scope)`)
	analyzeCmd.Flags().IntVar(&analyzeMaxMatches, "max-matches", 0, "cap on matches per player, 0 keeps the config value")
	analyzeCmd.Flags().BoolVar(&analyzeNoCSV, "no-csv", false, "skip CSV output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var flags config.Config
	flags.Database.ForceFullReanalysis = analyzeForce
	flags.General.AggregationScope = analyzeScope
	if analyzeMaxMatches > 0 {
		n := analyzeMaxMatches
		flags.General.MaxMatchesToAnalyze = &n
	}
	if err := cfg.Override(flags); err != nil {
		return err
	}

	players, err := targets(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store pipeline.Store
	if cfg.Database.EnableSQLite {
		db, err := openStore()
		if err != nil {
			slog.Error("database unavailable, continuing without it", "path", dbPath, "err", err)
		} else {
			defer db.Close()
			store = db
		}
	}

	g := cfg.General
	client := fetch.NewClient(fetch.Options{
		Timeout: g.RequestTimeout(),
		Policy: fetch.Policy{
			Attempts:       g.MaxRetries,
			RateLimitBase:  g.RateLimitBackoff(),
			NetworkBackoff: 2 * g.RequestDelay(),
		},
	})
	analyzer := pipeline.New(cfg, pipeline.Deps{
		Fetcher: client,
		Pages:   page.Guru{},
		Store:   store,
	})

	for _, p := range players {
		rep, err := analyzer.Run(ctx, p)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Warn("analysis interrupted")
				return nil
			}
			return err
		}
		if rep.Empty() {
			continue
		}
		writeReport(os.Stdout, rep)
	}
	slog.Info("analysis complete", "players", len(players))
	return nil
}

// targets returns the player named by a profile URL argument, or every
// configured player.
func targets(args []string) ([]model.Player, error) {
	if len(args) == 1 {
		name, id, ok := page.ProfileFromURL(args[0])
		if !ok {
			return nil, fmt.Errorf("not a profile URL: %q (want e.g. https://paladins.guru/profile/123456-PlayerName/matches)", args[0])
		}
		return []model.Player{{ID: id, Name: name}}, nil
	}
	players, err := cfg.Players()
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("no players to analyze: add players_to_track to %s or pass a profile URL", configPath)
	}
	return players, nil
}

func openStore() (*storage.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return storage.Open(dbPath)
}

// writeReport prints a run's tables to w and writes the enabled CSV files.
// Champion and map tables are cut to top_n_relations_to_show; CSVs get all.
func writeReport(w io.Writer, rep *pipeline.Report) {
	name := rep.Player.Name
	csvOut := cfg.CSV
	if analyzeNoCSV {
		csvOut = config.CSV{}
	}
	out := export.Writer{Dir: csvOut.OutputDir}
	topN := cfg.General.TopNRelationsToShow

	saved := func(what, path string, err error) {
		if err != nil {
			slog.Error("write csv failed", "file", what, "err", err)
			return
		}
		slog.Info("csv written", "file", path)
	}

	if csvOut.GenerateDetailedStats && len(rep.Rows) > 0 {
		path, err := out.MatchStats(name, rep.Rows)
		saved("stats", path, err)
	}
	if csvOut.GenerateRelations {
		path, err := out.Relationships(name, rep.Relationships)
		saved("relations", path, err)
	}

	if len(rep.Champions) > 0 {
		report.PrintChampionTable(w, name, aggregator.Top(rep.Champions, topN))
		if csvOut.GenerateChampStats {
			path, err := out.Champions(name, rep.Champions)
			saved("champions", path, err)
		}
	}
	if len(rep.Maps) > 0 {
		report.PrintMapTable(w, name, aggregator.Top(rep.Maps, topN))
		if csvOut.GenerateMapStats {
			path, err := out.Maps(name, rep.Maps)
			saved("maps", path, err)
		}
	}

	report.PrintRelationships(w, name, rep.Relationships, topN)
	report.PrintRunSummary(w, name, rep.Scope, rep.Summary)
}
